package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 业务错误种类。HTTP 层据此映射状态码，核心逻辑只关心种类本身。
var (
	// ErrInvalidQuantity 加购/改数量时数量小于 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotFound 购物车、行项目或引用的商品不存在
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart 空购物车发起结算
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStoreUnavailable 存储层超时或不可达
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCheckoutInProgress 同一用户的结算已在进行中
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	// ErrInvalidTransition 订单状态流转不合法
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError 结算表单校验失败，Fields 列出所有不合法的字段
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// CheckoutError 结算过程中下游写入失败，Step 标记失败环节，
// 此时购物车保持原样，调用方可安全重试。
type CheckoutError struct {
	Step string // address / payment / order
	Err  error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at %s: %v", e.Step, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// wrapStore 将存储层的底层错误折算成业务错误种类。
// 超时/取消统一归为 ErrStoreUnavailable，记录不存在归为 ErrNotFound。
func wrapStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}
