package main

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/GusSegura/ecommerce-full/internal/config"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/infra/mq"
	"github.com/GusSegura/ecommerce-full/internal/logger"
	"github.com/GusSegura/ecommerce-full/internal/repository/mysql"
	"github.com/GusSegura/ecommerce-full/internal/service"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)
	orderSvc := service.NewOrderService(orderRepo)

	ch, err := mqConn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderPlacedQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	// 手动确认模式（auto-ack=false），失败的消息可以重回队列
	msgs, err := ch.Consume(service.OrderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	zap.L().Info("payment worker started, waiting for messages")

	for d := range msgs {
		var m service.OrderPlacedMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Error("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), orderSvc, &m, d)
	}
}

// handleMessage 模拟支付捕获：支付状态 pending -> paid，订单状态
// pending -> processing。消息可能重复投递，已处理过的直接确认。
func handleMessage(ctx context.Context, orderSvc *service.OrderService, m *service.OrderPlacedMessage, d amqp.Delivery) {
	o, err := orderSvc.GetByID(ctx, m.OrderID)
	if err != nil {
		zap.L().Error("get order failed", zap.Int64("order_id", m.OrderID), zap.Error(err))
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordPaymentFailed()
		// 订单可能尚未可见，重新入队稍后再试
		_ = d.Nack(false, true)
		return
	}

	if o.PaymentStatus != order.PaymentPending {
		zap.L().Info("order already settled, skipping",
			zap.Int64("order_id", o.ID), zap.String("payment_status", o.PaymentStatus))
		_ = d.Ack(false)
		return
	}
	if o.Status == order.StatusCancelled {
		zap.L().Info("order cancelled before capture, skipping", zap.Int64("order_id", o.ID))
		_ = d.Ack(false)
		return
	}

	// 模拟支付：格式早已校验过，这里直接视为扣款成功
	if _, err := orderSvc.UpdatePaymentStatus(ctx, o.ID, order.PaymentPaid); err != nil {
		zap.L().Error("update payment status failed", zap.Int64("order_id", o.ID), zap.Error(err))
		service.GetMonitor().RecordPaymentFailed()
		_ = d.Nack(false, true)
		return
	}
	if _, err := orderSvc.UpdateStatus(ctx, o.ID, order.StatusProcessing); err != nil {
		// 支付状态已推进，订单状态失败只记日志，后台可手工流转
		zap.L().Warn("update order status failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}

	zap.L().Info("payment captured",
		zap.Int64("order_id", o.ID),
		zap.String("number", o.Number),
		zap.Int64("total", o.TotalPrice))
	service.GetMonitor().RecordPaymentProcessed()

	if err := d.Ack(false); err != nil {
		zap.L().Error("failed to ack message", zap.Error(err))
	}
}
