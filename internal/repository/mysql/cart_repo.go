package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// UpsertItem 利用 (cart_id, product_id) 唯一索引做原子合并：
// 冲突时 quantity = quantity + delta，避免整车读回改写造成并发丢更新。
func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID, delta int64) error {
	item := cart.Item{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  delta,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", delta),
			}),
		}).
		Create(&item).Error
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, cartID, productID, quantity int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&cart.Item{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&cart.Item{}).Error
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&cart.Item{}).Error
}
