package order

import (
	"context"
	"errors"
	"time"
)

// 订单状态流转：pending -> processing -> shipped -> delivered，
// pending/processing 可取消。
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// 支付状态与订单状态分开流转
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// 下单时库存校验/扣减可能失败
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product unavailable")
)

// Order 订单。行项目是结算时刻的价格快照，商品后续调价不影响历史订单。
type Order struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	Number            string    `gorm:"uniqueIndex;size:36;not null" json:"number"`
	UserID            int64     `gorm:"index;not null" json:"user_id"`
	Lines             []Line    `gorm:"foreignKey:OrderID" json:"lines"`
	ShippingAddressID int64     `gorm:"not null" json:"shipping_address_id"`
	PaymentMethodID   int64     `gorm:"not null" json:"payment_method_id"`
	ShippingCost      int64     `gorm:"not null" json:"shipping_cost"` // 分
	TotalPrice        int64     `gorm:"not null" json:"total_price"`   // 分
	Status            string    `gorm:"size:16;index;not null" json:"status"`
	PaymentStatus     string    `gorm:"size:16;index;not null" json:"payment_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Line 订单行项目，Price 为下单时刻的单价（分）
type Line struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	OrderID   int64 `gorm:"index;not null" json:"order_id"`
	ProductID int64 `gorm:"index;not null" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
	Price     int64 `gorm:"not null" json:"price"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// PlaceOrder 在单个事务内锁定商品行、校验并扣减库存、按当前价格
	// 快照行项目单价、计算总价并写入订单。任一行库存不足时整单失败，
	// 返回 ErrInsufficientStock / ErrProductUnavailable。
	PlaceOrder(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	// UpdateStatus 只更新订单状态字段
	UpdateStatus(ctx context.Context, id int64, status string) error
	// UpdatePaymentStatus 只更新支付状态字段
	UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error
}
