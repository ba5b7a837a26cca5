package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/GusSegura/ecommerce-full/internal/config"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/address"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/payment"
)

const (
	redisCheckoutLockKey = "checkout:lock:%d" // userID

	// OrderPlacedQueue 下单成功后投递订单事件的队列
	OrderPlacedQueue = "order_placed"
)

// OrderPlacedMessage 下单事件，payment-worker 据此模拟支付
type OrderPlacedMessage struct {
	OrderID int64  `json:"order_id"`
	Number  string `json:"number"`
	UserID  int64  `json:"user_id"`
	Total   int64  `json:"total"`
}

// CheckoutService 结算编排：表单校验 -> 创建地址/支付方式 -> 下单事务 ->
// 清空购物车 -> 投递订单事件。
// 地址/支付方式的创建登记补偿动作，后续环节失败时逐个回滚，
// 购物车只在订单落库之后清空，失败重试永远安全。
type CheckoutService struct {
	cartSvc     *CartService
	addressRepo address.Repository
	paymentRepo payment.Repository
	orderRepo   order.Repository
	redis       radix.Client
	mqConn      *amqp.Connection
	cfg         *config.CheckoutConfig

	// now 可注入，方便测试过期校验
	now func() time.Time
}

// NewCheckoutService 创建结算服务。redis/mqConn 允许为 nil（单测场景），
// 此时跳过结算互斥锁与事件投递。
func NewCheckoutService(
	cartSvc *CartService,
	addressRepo address.Repository,
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	redisClient radix.Client,
	mqConn *amqp.Connection,
	cfg *config.CheckoutConfig,
) *CheckoutService {
	if cfg == nil {
		cfg = &config.DefaultConfig().Checkout
	}
	return &CheckoutService{
		cartSvc:     cartSvc,
		addressRepo: addressRepo,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		redis:       redisClient,
		mqConn:      mqConn,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Checkout 把用户当前购物车转成一笔订单。
// 返回的订单携带行项目快照与总价，供前端确认页展示。
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, form *CheckoutForm) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	// 1. 表单校验，任何写入之前失败返回
	if verr := validateCheckoutForm(form, s.now()); verr != nil {
		GetMonitor().RecordCheckoutError()
		return nil, verr
	}

	// 2. 每用户结算互斥，防止同一购物车被并发下单两次
	unlock, err := s.acquireLock(userID)
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}
	defer unlock()

	// 3. 读取购物车
	c, err := s.cartSvc.GetCart(ctx, userID)
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}
	if len(c.Items) == 0 {
		GetMonitor().RecordCheckoutError()
		return nil, ErrEmptyCart
	}

	// 4. 并发创建地址与支付方式，成功的一方登记补偿
	var compensations []func()
	compensate := func() {
		for i := len(compensations) - 1; i >= 0; i-- {
			compensations[i]()
		}
	}

	addr := &address.Address{
		UserID:     userID,
		Name:       strings.TrimSpace(form.CardHolderName),
		Address:    strings.TrimSpace(form.ShippingAddress),
		City:       form.City,
		State:      form.State,
		PostalCode: form.PostalCode,
		Country:    form.Country,
		Phone:      form.Phone,
	}
	pm := &payment.Method{
		UserID:         userID,
		Type:           "credit_card",
		CardLast4:      cardLast4(form.CardNumber),
		CardHolderName: strings.TrimSpace(form.CardHolderName),
		ExpiryDate:     form.ExpiryDate,
	}

	var (
		wg              sync.WaitGroup
		addrErr, payErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		addrErr = s.addressRepo.Create(ctx, addr)
	}()
	go func() {
		defer wg.Done()
		payErr = s.paymentRepo.Create(ctx, pm)
	}()
	wg.Wait()

	if addrErr == nil {
		id := addr.ID
		compensations = append(compensations, func() {
			if err := s.addressRepo.Delete(context.Background(), id); err != nil {
				zap.L().Warn("failed to roll back shipping address", zap.Int64("address_id", id), zap.Error(err))
			}
		})
	}
	if payErr == nil {
		id := pm.ID
		compensations = append(compensations, func() {
			if err := s.paymentRepo.Delete(context.Background(), id); err != nil {
				zap.L().Warn("failed to roll back payment method", zap.Int64("payment_id", id), zap.Error(err))
			}
		})
	}
	if addrErr != nil || payErr != nil {
		compensate()
		GetMonitor().RecordCheckoutError()
		if addrErr != nil {
			return nil, &CheckoutError{Step: "address", Err: wrapStore(addrErr)}
		}
		return nil, &CheckoutError{Step: "payment", Err: wrapStore(payErr)}
	}

	// 5. 下单事务：锁库存、快照价格、写订单
	shippingCost := form.ShippingCost
	if shippingCost == 0 {
		shippingCost = s.cfg.DefaultShippingCost
	}
	o := &order.Order{
		Number:            uuid.NewString(),
		UserID:            userID,
		ShippingAddressID: addr.ID,
		PaymentMethodID:   pm.ID,
		ShippingCost:      shippingCost,
		Status:            order.StatusPending,
		PaymentStatus:     order.PaymentPending,
	}
	for _, item := range c.Items {
		o.Lines = append(o.Lines, order.Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.orderRepo.PlaceOrder(ctx, o); err != nil {
		compensate()
		GetMonitor().RecordCheckoutError()
		return nil, &CheckoutError{Step: "order", Err: wrapStore(err)}
	}

	// 6. 清空购物车。订单已落库，清空失败只记日志，重清幂等。
	if err := s.cartSvc.ClearCart(ctx, userID); err != nil {
		zap.L().Warn("failed to clear cart after checkout",
			zap.Int64("user_id", userID), zap.Int64("order_id", o.ID), zap.Error(err))
	}

	// 7. 投递订单事件，尽力而为
	if err := s.publishOrderPlaced(ctx, o); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("failed to publish order placed event",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}

	GetMonitor().RecordCheckoutSuccess()
	zap.L().Info("checkout completed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", o.ID),
		zap.String("number", o.Number),
		zap.Int64("total", o.TotalPrice))
	return o, nil
}

// acquireLock 通过 Redis SETNX 拿结算互斥锁，返回释放函数。
// 没有配置 Redis 时退化为无锁。
func (s *CheckoutService) acquireLock(userID int64) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf(redisCheckoutLockKey, userID)
	var ok int
	if err := s.redis.Do(radix.FlatCmd(&ok, "SETNX", key, s.now().UnixNano())); err != nil {
		GetMonitor().RecordRedisError()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if ok == 0 {
		return nil, ErrCheckoutInProgress
	}
	_ = s.redis.Do(radix.FlatCmd(nil, "EXPIRE", key, s.cfg.LockTTLSeconds))
	return func() {
		if err := s.redis.Do(radix.Cmd(nil, "DEL", key)); err != nil {
			GetMonitor().RecordRedisError()
		}
	}, nil
}

func (s *CheckoutService) publishOrderPlaced(ctx context.Context, o *order.Order) error {
	if s.mqConn == nil {
		return nil
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderPlacedMessage{
		OrderID: o.ID,
		Number:  o.Number,
		UserID:  o.UserID,
		Total:   o.TotalPrice,
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		OrderPlacedQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
