package server

import (
	"errors"

	"github.com/kataras/iris/v12"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/service"
)

// writeError 把业务错误种类映射为 HTTP 状态码。
// 校验类 4xx，下游写入失败 5xx，与核心契约解耦。
func writeError(ctx iris.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": verr.Error(), "fields": verr.Fields})
		return
	}

	var code int
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidTransition):
		code = 400
	case errors.Is(err, service.ErrNotFound):
		code = 404
	case errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrProductUnavailable):
		code = 409
	case errors.Is(err, service.ErrStoreUnavailable):
		code = 503
	default:
		var cerr *service.CheckoutError
		if errors.As(err, &cerr) {
			code = 502
		} else {
			code = 500
		}
	}
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": err.Error()})
}

// writeData 统一的成功响应包装
func writeData(ctx iris.Context, data interface{}) {
	_ = ctx.JSON(iris.Map{"code": 0, "data": data})
}
