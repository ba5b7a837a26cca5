package address

import (
	"context"
	"time"
)

// Address 收货地址，每次结算创建一条，被订单引用
type Address struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"index;not null" json:"user_id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Address    string    `gorm:"size:256;not null" json:"address"`
	City       string    `gorm:"size:64" json:"city"`
	State      string    `gorm:"size:64" json:"state"`
	PostalCode string    `gorm:"size:16" json:"postal_code"`
	Country    string    `gorm:"size:64" json:"country"`
	Phone      string    `gorm:"size:32" json:"phone"`
	IsDefault  bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository 收货地址仓储接口
type Repository interface {
	Create(ctx context.Context, a *Address) error
	GetByID(ctx context.Context, id int64) (*Address, error)
	ListByUser(ctx context.Context, userID int64) ([]*Address, error)
	// Delete 用于结算失败时回滚已创建的地址
	Delete(ctx context.Context, id int64) error
}
