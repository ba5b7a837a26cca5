package cart

import (
	"context"
	"time"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

// Cart 购物车，一个用户最多一个。首次加购时惰性创建，清空而不删除。
type Cart struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Items     []Item    `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item 购物车行项目。同一购物车内每个商品至多一行（唯一索引保证），
// 数量恒 >= 1，数量归零时整行删除。
type Item struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	CartID    int64            `gorm:"uniqueIndex:uk_cart_product;not null" json:"cart_id"`
	ProductID int64            `gorm:"uniqueIndex:uk_cart_product;not null" json:"product_id"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	Product   *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Repository 购物车仓储接口。
// 行项目的增减都是存储层的条件更新（而不是整车读回改写），
// 并发加购同一商品时数量不会互相覆盖。
type Repository interface {
	// GetByUser 返回用户的购物车（Items 连带商品数据），不存在时返回 gorm.ErrRecordNotFound
	GetByUser(ctx context.Context, userID int64) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	// UpsertItem 原子合并：已有同商品行则 quantity += delta，否则插入新行
	UpsertItem(ctx context.Context, cartID, productID, delta int64) error
	// SetItemQuantity 绝对设置数量，行不存在时返回 found=false
	SetItemQuantity(ctx context.Context, cartID, productID, quantity int64) (found bool, err error)
	// RemoveItem 删除行项目，行不存在时静默成功
	RemoveItem(ctx context.Context, cartID, productID int64) error
	// ClearItems 清空所有行项目，幂等
	ClearItems(ctx context.Context, cartID int64) error
}
