package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/client"
)

type clientRepo struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓储
func NewClientRepository(db *gorm.DB) client.Repository {
	return &clientRepo{db: db}
}

func (r *clientRepo) GetByID(ctx context.Context, id int64) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) GetByUser(ctx context.Context, userID int64) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) Create(ctx context.Context, c *client.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) Update(ctx context.Context, c *client.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) ListAll(ctx context.Context) ([]*client.Client, error) {
	var list []*client.Client
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
