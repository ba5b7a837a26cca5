package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/client"
)

// ClientService 客户档案管理。删除用户不在范围内，后台只做软停用。
type ClientService struct {
	repo client.Repository
}

// NewClientService 创建客户服务
func NewClientService(repo client.Repository) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) GetByUser(ctx context.Context, userID int64) (*client.Client, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client for user %d: %w", userID, ErrNotFound)
		}
		return nil, wrapStore(err)
	}
	return c, nil
}

func (s *ClientService) Create(ctx context.Context, c *client.Client) error {
	c.Active = true
	return wrapStore(s.repo.Create(ctx, c))
}

func (s *ClientService) ListAll(ctx context.Context) ([]*client.Client, error) {
	return s.repo.ListAll(ctx)
}

// SetActive 软停用/恢复客户
func (s *ClientService) SetActive(ctx context.Context, id int64, active bool) (*client.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
		}
		return nil, wrapStore(err)
	}
	c.Active = active
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, wrapStore(err)
	}
	return c, nil
}
