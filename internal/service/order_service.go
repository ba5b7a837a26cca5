package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
)

// 订单状态机：pending -> processing -> shipped -> delivered，
// pending/processing 可取消
var statusTransitions = map[string][]string{
	order.StatusPending:    {order.StatusProcessing, order.StatusCancelled},
	order.StatusProcessing: {order.StatusShipped, order.StatusCancelled},
	order.StatusShipped:    {order.StatusDelivered},
}

// 支付状态只能从 pending 出发
var paymentTransitions = map[string][]string{
	order.PaymentPending: {order.PaymentPaid, order.PaymentFailed},
}

// OrderService 订单查询与状态流转
type OrderService struct {
	repo order.Repository
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository) *OrderService {
	return &OrderService{repo: repo}
}

func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, wrapStore(err)
	}
	return o, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListRecent 查询最新的订单记录
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.repo.ListRecent(ctx, limit)
}

// UpdateStatus 推进订单状态，非法流转返回 ErrInvalidTransition
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*order.Order, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(statusTransitions, o.Status, status) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, status, ErrInvalidTransition)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, wrapStore(err)
	}
	o.Status = status
	return o, nil
}

// UpdatePaymentStatus 推进支付状态，与订单状态独立流转
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) (*order.Order, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(paymentTransitions, o.PaymentStatus, paymentStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", o.PaymentStatus, paymentStatus, ErrInvalidTransition)
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, paymentStatus); err != nil {
		return nil, wrapStore(err)
	}
	o.PaymentStatus = paymentStatus
	return o, nil
}

// Cancel 取消订单，等价于流转到 cancelled
func (s *OrderService) Cancel(ctx context.Context, id int64) (*order.Order, error) {
	return s.UpdateStatus(ctx, id, order.StatusCancelled)
}

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
