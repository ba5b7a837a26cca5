package payment

import (
	"context"
	"time"
)

// Method 支付方式。模拟支付流程，只保留卡号后四位，完整卡号不落库。
type Method struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"index;not null" json:"user_id"`
	Type           string    `gorm:"size:32;not null" json:"type"` // credit_card
	CardLast4      string    `gorm:"size:4;not null" json:"card_last4"`
	CardHolderName string    `gorm:"size:128;not null" json:"card_holder_name"`
	ExpiryDate     string    `gorm:"size:5;not null" json:"expiry_date"` // MM/YY
	IsDefault      bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Repository 支付方式仓储接口
type Repository interface {
	Create(ctx context.Context, m *Method) error
	GetByID(ctx context.Context, id int64) (*Method, error)
	ListByUser(ctx context.Context, userID int64) ([]*Method, error)
	// Delete 用于结算失败时回滚已创建的支付方式
	Delete(ctx context.Context, id int64) error
}
