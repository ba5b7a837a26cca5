package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// PlaceOrder 下单事务：逐行锁定商品、校验状态与库存、扣减库存，
// 用锁定行的当前价格作为快照单价，最后写入订单与行项目。
func (r *orderRepo) PlaceOrder(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		for i := range o.Lines {
			line := &o.Lines[i]

			// 1) 锁定商品行
			var p product.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&p, line.ProductID).Error; err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, order.ErrProductUnavailable)
			}
			if p.Status != product.StatusOnline {
				return fmt.Errorf("product %d: %w", line.ProductID, order.ErrProductUnavailable)
			}

			// 2) 校验并扣减库存
			if p.Stock < line.Quantity {
				return fmt.Errorf("product %d: %w", line.ProductID, order.ErrInsufficientStock)
			}
			p.Stock -= line.Quantity
			if err := tx.Save(&p).Error; err != nil {
				return err
			}

			// 3) 快照当前单价
			line.Price = p.Price
			total += line.Price * line.Quantity
		}

		o.TotalPrice = total + o.ShippingCost
		return tx.Create(o).Error
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("payment_status", paymentStatus).Error
}
