package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/cart"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

// CartService 维护每个用户唯一的购物车。
// 不变式：同一商品在车内至多一行，行数量恒 >= 1。
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart 返回用户购物车。没有购物车是合法状态，返回空车而不是错误。
func (s *CartService) GetCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &cart.Cart{UserID: userID, Items: []cart.Item{}}, nil
		}
		return nil, wrapStore(err)
	}
	return c, nil
}

// AddItem 加购。商品已在车内时合并数量（quantity += delta），否则追加新行。
// 合并走存储层的原子自增，并发加购不会丢更新。
func (s *CartService) AddItem(ctx context.Context, userID, productID, quantity int64) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, wrapStore(err)
	}
	if p.Status != product.StatusOnline {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapStore(err)
		}
		// 首次加购惰性建车
		c = &cart.Cart{UserID: userID}
		if err := s.cartRepo.Create(ctx, c); err != nil {
			return nil, wrapStore(err)
		}
	}

	if err := s.cartRepo.UpsertItem(ctx, c.ID, productID, quantity); err != nil {
		return nil, wrapStore(err)
	}
	return s.GetCart(ctx, userID)
}

// UpdateQuantity 绝对设置某行数量。行或车不存在返回 ErrNotFound，
// 数量小于 1 返回 ErrInvalidQuantity 且原行保持不变。
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, quantity int64) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %d: %w", userID, ErrNotFound)
		}
		return nil, wrapStore(err)
	}

	found, err := s.cartRepo.SetItemQuantity(ctx, c.ID, productID, quantity)
	if err != nil {
		return nil, wrapStore(err)
	}
	if !found {
		return nil, fmt.Errorf("product %d in cart: %w", productID, ErrNotFound)
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem 删除某行，幂等：行或车不存在都静默成功
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*cart.Cart, error) {
	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &cart.Cart{UserID: userID, Items: []cart.Item{}}, nil
		}
		return nil, wrapStore(err)
	}

	if err := s.cartRepo.RemoveItem(ctx, c.ID, productID); err != nil {
		return nil, wrapStore(err)
	}
	return s.GetCart(ctx, userID)
}

// ClearCart 清空购物车，幂等：没有购物车也算成功
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return wrapStore(err)
	}
	return wrapStore(s.cartRepo.ClearItems(ctx, c.ID))
}
