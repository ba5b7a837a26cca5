package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

func seedOrder(t *testing.T, repo *fakeOrderRepo, status, paymentStatus string) *order.Order {
	t.Helper()
	o := &order.Order{
		Number:        "a4e9c2d0-0000-0000-0000-000000000001",
		UserID:        1,
		Status:        status,
		PaymentStatus: paymentStatus,
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		ok   bool
	}{
		{"pending to processing", order.StatusPending, order.StatusProcessing, true},
		{"processing to shipped", order.StatusProcessing, order.StatusShipped, true},
		{"shipped to delivered", order.StatusShipped, order.StatusDelivered, true},
		{"pending to cancelled", order.StatusPending, order.StatusCancelled, true},
		{"processing to cancelled", order.StatusProcessing, order.StatusCancelled, true},
		{"pending skips to shipped", order.StatusPending, order.StatusShipped, false},
		{"shipped cannot cancel", order.StatusShipped, order.StatusCancelled, false},
		{"delivered is terminal", order.StatusDelivered, order.StatusProcessing, false},
		{"cancelled is terminal", order.StatusCancelled, order.StatusProcessing, false},
		{"no backward move", order.StatusShipped, order.StatusProcessing, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeOrderRepo(newFakeProductRepo())
			svc := NewOrderService(repo)
			o := seedOrder(t, repo, tc.from, order.PaymentPending)

			got, err := svc.UpdateStatus(context.Background(), o.ID, tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, got.Status)
				stored, err := repo.GetByID(context.Background(), o.ID)
				require.NoError(t, err)
				assert.Equal(t, tc.to, stored.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				stored, gerr := repo.GetByID(context.Background(), o.ID)
				require.NoError(t, gerr)
				assert.Equal(t, tc.from, stored.Status)
			}
		})
	}
}

func TestOrderPaymentTransitions(t *testing.T) {
	repo := newFakeOrderRepo(newFakeProductRepo())
	svc := NewOrderService(repo)

	o := seedOrder(t, repo, order.StatusPending, order.PaymentPending)
	got, err := svc.UpdatePaymentStatus(context.Background(), o.ID, order.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPaid, got.PaymentStatus)

	// paid 为终态
	_, err = svc.UpdatePaymentStatus(context.Background(), o.ID, order.PaymentFailed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderCancel(t *testing.T) {
	repo := newFakeOrderRepo(newFakeProductRepo())
	svc := NewOrderService(repo)

	o := seedOrder(t, repo, order.StatusPending, order.PaymentPending)
	got, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)

	// 已取消订单不可再取消
	_, err = svc.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderGetByIDNotFound(t *testing.T) {
	repo := newFakeOrderRepo(newFakeProductRepo())
	svc := NewOrderService(repo)

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderListByUser(t *testing.T) {
	repo := newFakeOrderRepo(newFakeProductRepo(
		&product.Product{ID: 1, Price: 100, Stock: 10, Status: product.StatusOnline},
	))
	svc := NewOrderService(repo)

	seedOrder(t, repo, order.StatusPending, order.PaymentPending)
	other := &order.Order{Number: "a4e9c2d0-0000-0000-0000-000000000002", UserID: 2,
		Status: order.StatusPending, PaymentStatus: order.PaymentPending}
	require.NoError(t, repo.Create(context.Background(), other))

	list, err := svc.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].UserID)
}
