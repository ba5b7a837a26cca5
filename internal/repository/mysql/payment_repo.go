package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/payment"
)

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付方式仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, m *payment.Method) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id int64) (*payment.Method, error) {
	var m payment.Method
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID int64) ([]*payment.Method, error) {
	var list []*payment.Method
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *paymentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&payment.Method{}, id).Error
}
