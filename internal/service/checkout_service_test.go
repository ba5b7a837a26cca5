package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GusSegura/ecommerce-full/internal/config"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

type checkoutFixture struct {
	svc       *CheckoutService
	cartSvc   *CartService
	products  *fakeProductRepo
	addresses *fakeAddressRepo
	payments  *fakePaymentRepo
	orders    *fakeOrderRepo
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	products := newFakeProductRepo(
		&product.Product{ID: 1, Name: "Jacket", Price: 10000, Stock: 10, Status: product.StatusOnline},
		&product.Product{ID: 2, Name: "Scarf", Price: 2500, Stock: 3, Status: product.StatusOnline},
	)
	carts := newFakeCartRepo(products)
	cartSvc := NewCartService(carts, products)
	addresses := newFakeAddressRepo()
	payments := newFakePaymentRepo()
	orders := newFakeOrderRepo(products)

	svc := NewCheckoutService(cartSvc, addresses, payments, orders, nil, nil, &config.CheckoutConfig{
		LockTTLSeconds:      30,
		StoreTimeoutSeconds: 5,
	})
	svc.now = func() time.Time { return validationNow }

	return &checkoutFixture{
		svc:       svc,
		cartSvc:   cartSvc,
		products:  products,
		addresses: addresses,
		payments:  payments,
		orders:    orders,
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Checkout(context.Background(), 1, validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.addresses.count())
	assert.Zero(t, f.payments.count())
	assert.Zero(t, f.orders.count())
}

func TestCheckoutRejectsShortCardNumber(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)

	form := validForm()
	form.CardNumber = "41111111111" // 11 位

	_, err = f.svc.Checkout(ctx, 1, form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "card_number")

	// 校验失败不产生任何写入
	assert.Zero(t, f.addresses.count())
	assert.Zero(t, f.payments.count())
	assert.Zero(t, f.orders.count())
}

func TestCheckoutEndToEnd(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	o, err := f.svc.Checkout(ctx, 1, validForm())
	require.NoError(t, err)

	assert.Equal(t, int64(1), o.UserID)
	assert.NotEmpty(t, o.Number)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(2), o.Lines[0].Quantity)
	assert.Equal(t, int64(10000), o.Lines[0].Price)
	assert.Equal(t, int64(20000), o.TotalPrice)
	assert.Zero(t, o.ShippingCost)

	// 地址与支付方式各创建一条，且被订单引用
	assert.Equal(t, 1, f.addresses.count())
	assert.Equal(t, 1, f.payments.count())
	assert.Equal(t, 1, f.orders.count())
	assert.NotZero(t, o.ShippingAddressID)
	assert.NotZero(t, o.PaymentMethodID)

	pm, err := f.payments.GetByID(ctx, o.PaymentMethodID)
	require.NoError(t, err)
	assert.Equal(t, "1111", pm.CardLast4)

	// 购物车清空，库存扣减
	c, err := f.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	p, err := f.products.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), p.Stock)
}

func TestCheckoutAppliesShippingCost(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 2, 1)
	require.NoError(t, err)

	form := validForm()
	form.ShippingCost = 500

	o, err := f.svc.Checkout(ctx, 1, form)
	require.NoError(t, err)
	assert.Equal(t, int64(500), o.ShippingCost)
	assert.Equal(t, int64(3000), o.TotalPrice)
}

func TestCheckoutSnapshotsPriceAtOrderTime(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)

	o, err := f.svc.Checkout(ctx, 1, validForm())
	require.NoError(t, err)

	// 下单之后调价不影响历史订单
	p, err := f.products.GetByID(ctx, 1)
	require.NoError(t, err)
	p.Price = 99999
	require.NoError(t, f.products.Update(ctx, p))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Lines[0].Price)
}

func TestCheckoutInsufficientStockFailsWholeOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 2, 5) // 库存只有 3
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, 1, validForm())
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInsufficientStock)

	var cerr *CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "order", cerr.Step)

	// 地址/支付方式已回滚，购物车保持原样可重试
	assert.Zero(t, f.addresses.count())
	assert.Zero(t, f.payments.count())
	assert.Zero(t, f.orders.count())

	c, err := f.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(5), c.Items[0].Quantity)
}

func TestCheckoutOrderFailureRollsBackAndKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)

	f.orders.placeErr = errors.New("connection reset")

	_, err = f.svc.Checkout(ctx, 1, validForm())
	var cerr *CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "order", cerr.Step)

	assert.Zero(t, f.addresses.count())
	assert.Zero(t, f.payments.count())
	assert.Equal(t, 1, f.addresses.deleteCnt)
	assert.Equal(t, 1, f.payments.deleteCnt)

	c, err := f.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestCheckoutAddressFailureCompensatesPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)

	f.addresses.createErr = errors.New("store down")

	_, err = f.svc.Checkout(ctx, 1, validForm())
	var cerr *CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "address", cerr.Step)

	// 并发创建成功的支付方式被补偿删除
	assert.Zero(t, f.payments.count())
	assert.Zero(t, f.orders.count())

	c, err := f.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}
