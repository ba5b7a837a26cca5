package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors    int64
	MQErrors       int64
	DBErrors       int64
	CheckoutErrors int64
	WorkerErrors   int64

	// 性能统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	PaymentProcessed int64
	PaymentFailed    int64

	// 时间统计
	LastRedisError   time.Time
	LastMQError      time.Time
	LastDBError      time.Time
	LastCheckoutTime time.Time
	LastPaymentTime  time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordCheckoutRequest 记录结算请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录结算成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutError 记录结算失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordPaymentProcessed 记录支付处理成功
func (m *Monitor) RecordPaymentProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentProcessed++
	m.LastPaymentTime = time.Now()
}

// RecordPaymentFailed 记录支付处理失败
func (m *Monitor) RecordPaymentFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentFailed++
	m.WorkerErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.CheckoutRequests > 0 {
		successRate = float64(m.CheckoutSuccess) / float64(m.CheckoutRequests) * 100
	}

	paymentSuccessRate := float64(0)
	totalPayment := m.PaymentProcessed + m.PaymentFailed
	if totalPayment > 0 {
		paymentSuccessRate = float64(m.PaymentProcessed) / float64(totalPayment) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"redis":    m.RedisErrors,
			"mq":       m.MQErrors,
			"db":       m.DBErrors,
			"checkout": m.CheckoutErrors,
			"worker":   m.WorkerErrors,
		},
		"performance": map[string]interface{}{
			"checkout_requests":     m.CheckoutRequests,
			"checkout_success":      m.CheckoutSuccess,
			"checkout_success_rate": successRate,
			"payment_processed":     m.PaymentProcessed,
			"payment_failed":        m.PaymentFailed,
			"payment_success_rate":  paymentSuccessRate,
		},
		"last_events": map[string]interface{}{
			"redis_error":   m.LastRedisError,
			"mq_error":      m.LastMQError,
			"db_error":      m.LastDBError,
			"last_checkout": m.LastCheckoutTime,
			"last_payment":  m.LastPaymentTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors = 0
	m.MQErrors = 0
	m.DBErrors = 0
	m.CheckoutErrors = 0
	m.WorkerErrors = 0
	m.CheckoutRequests = 0
	m.CheckoutSuccess = 0
	m.PaymentProcessed = 0
	m.PaymentFailed = 0
}
