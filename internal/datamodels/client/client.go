package client

import (
	"context"
	"time"
)

// Client 客户档案，归属用户。后台只做软停用，不做物理删除。
type Client struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	FirstName string    `gorm:"size:64" json:"first_name"`
	LastName  string    `gorm:"size:64" json:"last_name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 客户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetByUser(ctx context.Context, userID int64) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	ListAll(ctx context.Context) ([]*Client, error)
}
