package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/GusSegura/ecommerce-full/internal/datamodels/address"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/cart"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/order"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/payment"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
)

// 内存版仓储，行为对齐 mysql 实现：找不到记录返回 gorm.ErrRecordNotFound，
// 购物车行合并是原子自增语义。

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*product.Product
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[int64]*product.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListOnline(ctx context.Context) ([]*product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListByCategory(ctx context.Context, category string) ([]*product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

type fakeCartRepo struct {
	mu       sync.Mutex
	nextID   int64
	carts    []*cart.Cart
	products *fakeProductRepo // 用于填充 Item.Product
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{products: products}
}

func (r *fakeCartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			cp := cart.Cart{ID: c.ID, UserID: c.UserID}
			for _, item := range c.Items {
				populated := item
				if r.products != nil {
					if p, ok := r.products.products[item.ProductID]; ok {
						prod := *p
						populated.Product = &prod
					}
				}
				cp.Items = append(cp.Items, populated)
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) Create(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.carts = append(r.carts, c)
	return nil
}

func (r *fakeCartRepo) UpsertItem(ctx context.Context, cartID, productID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity += delta
				return nil
			}
		}
		c.Items = append(c.Items, cart.Item{CartID: cartID, ProductID: productID, Quantity: delta})
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) SetItemQuantity(ctx context.Context, cartID, productID, quantity int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity = quantity
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		kept := c.Items[:0]
		for _, item := range c.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		c.Items = kept
	}
	return nil
}

func (r *fakeCartRepo) ClearItems(ctx context.Context, cartID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.ID == cartID {
			c.Items = nil
		}
	}
	return nil
}

type fakeAddressRepo struct {
	mu         sync.Mutex
	nextID     int64
	addresses  map[int64]*address.Address
	createErr  error
	deleteCnt  int
	createdCnt int
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: make(map[int64]*address.Address)}
}

func (r *fakeAddressRepo) Create(ctx context.Context, a *address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	a.ID = r.nextID
	r.addresses[a.ID] = a
	r.createdCnt++
	return nil
}

func (r *fakeAddressRepo) GetByID(ctx context.Context, id int64) (*address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAddressRepo) ListByUser(ctx context.Context, userID int64) ([]*address.Address, error) {
	return nil, nil
}

func (r *fakeAddressRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.addresses, id)
	r.deleteCnt++
	return nil
}

func (r *fakeAddressRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.addresses)
}

type fakePaymentRepo struct {
	mu        sync.Mutex
	nextID    int64
	methods   map[int64]*payment.Method
	createErr error
	deleteCnt int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{methods: make(map[int64]*payment.Method)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, m *payment.Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	m.ID = r.nextID
	r.methods[m.ID] = m
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id int64) (*payment.Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *fakePaymentRepo) ListByUser(ctx context.Context, userID int64) ([]*payment.Method, error) {
	return nil, nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.methods, id)
	r.deleteCnt++
	return nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.methods)
}

type fakeOrderRepo struct {
	mu       sync.Mutex
	nextID   int64
	orders   map[int64]*order.Order
	products *fakeProductRepo
	placeErr error
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*order.Order), products: products}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return nil
}

// PlaceOrder 复刻 mysql 实现的语义：校验状态与库存、扣库存、快照价格、算总价
func (r *fakeOrderRepo) PlaceOrder(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.placeErr != nil {
		return r.placeErr
	}

	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	var total int64
	for i := range o.Lines {
		line := &o.Lines[i]
		p, ok := r.products.products[line.ProductID]
		if !ok || p.Status != product.StatusOnline {
			return fmt.Errorf("product %d: %w", line.ProductID, order.ErrProductUnavailable)
		}
		if p.Stock < line.Quantity {
			return fmt.Errorf("product %d: %w", line.ProductID, order.ErrInsufficientStock)
		}
		p.Stock -= line.Quantity
		line.Price = p.Price
		total += line.Price * line.Quantity
	}
	o.TotalPrice = total + o.ShippingCost

	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			list = append(list, o)
		}
	}
	return list, nil
}

func (r *fakeOrderRepo) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.PaymentStatus = paymentStatus
	return nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}
