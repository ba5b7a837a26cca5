package product

import (
	"context"
	"time"
)

const (
	StatusOffline = 0
	StatusOnline  = 1
)

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // 分
	Stock       int64     `gorm:"not null" json:"stock"`
	Category    string    `gorm:"size:32;index" json:"category"` // 分类：men、women、kids、accessories
	Status      int       `gorm:"index" json:"status"`           // 0:下线 1:正常
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListOnline(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
