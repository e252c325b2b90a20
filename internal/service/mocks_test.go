package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/repository"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// Shared across the package: promauto registers against the default
// registry, so metrics must be created exactly once.
var testMetrics = telemetry.NewBusinessMetrics("test")

var testLogger = zerolog.Nop()

// Errors the real store surfaces, reproduced for the mocks.
var (
	errNoRows          = pgx.ErrNoRows
	errUniqueViolation = &pgconn.PgError{Code: "23505"}
)

// mockProductStore implements ProductStore with overridable functions.
type mockProductStore struct {
	CreateProductFunc      func(ctx context.Context, params domain.CreateProductParams) (domain.Product, error)
	GetProductFunc         func(ctx context.Context, id int64) (domain.Product, error)
	ListProductsFunc       func(ctx context.Context) ([]domain.Product, error)
	ListNewestProductsFunc func(ctx context.Context, n int32) ([]domain.Product, error)
	ListPopularFunc        func(ctx context.Context) ([]domain.Product, error)
	TogglePopularFunc      func(ctx context.Context, id int64) (bool, error)
	UpdateProductFunc      func(ctx context.Context, id int64, params domain.UpdateProductParams) (domain.Product, error)
	DeleteProductFunc      func(ctx context.Context, id int64) error
}

func (m *mockProductStore) CreateProduct(ctx context.Context, params domain.CreateProductParams) (domain.Product, error) {
	return m.CreateProductFunc(ctx, params)
}
func (m *mockProductStore) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return m.GetProductFunc(ctx, id)
}
func (m *mockProductStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.ListProductsFunc(ctx)
}
func (m *mockProductStore) ListNewestProducts(ctx context.Context, n int32) ([]domain.Product, error) {
	return m.ListNewestProductsFunc(ctx, n)
}
func (m *mockProductStore) ListPopularProducts(ctx context.Context) ([]domain.Product, error) {
	return m.ListPopularFunc(ctx)
}
func (m *mockProductStore) TogglePopular(ctx context.Context, id int64) (bool, error) {
	return m.TogglePopularFunc(ctx, id)
}
func (m *mockProductStore) UpdateProduct(ctx context.Context, id int64, params domain.UpdateProductParams) (domain.Product, error) {
	return m.UpdateProductFunc(ctx, id, params)
}
func (m *mockProductStore) DeleteProduct(ctx context.Context, id int64) error {
	return m.DeleteProductFunc(ctx, id)
}

// memCartStore is an in-memory CartStore with real merge semantics.
type memCartStore struct {
	carts    map[int64]domain.Cart
	products map[int64]domain.Product
}

func newMemCartStore(products ...domain.Product) *memCartStore {
	s := &memCartStore{
		carts:    map[int64]domain.Cart{},
		products: map[int64]domain.Product{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (m *memCartStore) cart(userID int64) domain.Cart {
	if m.carts[userID] == nil {
		m.carts[userID] = domain.Cart{}
	}
	return m.carts[userID]
}

func (m *memCartStore) GetCart(_ context.Context, userID int64) (domain.Cart, error) {
	out := domain.Cart{}
	for id, qty := range m.cart(userID) {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out, nil
}

func (m *memCartStore) AddCartItem(_ context.Context, userID, productID int64, qty int32) (bool, error) {
	if _, ok := m.products[productID]; !ok {
		return false, nil
	}
	m.cart(userID)[productID] += qty
	return true, nil
}

func (m *memCartStore) RemoveCartItem(_ context.Context, userID, productID int64, qty int32) error {
	cart := m.cart(userID)
	if cart[productID] <= qty {
		delete(cart, productID)
		return nil
	}
	cart[productID] -= qty
	return nil
}

func (m *memCartStore) ResetCart(_ context.Context, userID int64) error {
	m.carts[userID] = domain.Cart{}
	return nil
}

func (m *memCartStore) MergeCartAndGet(ctx context.Context, userID int64, items domain.Cart) (domain.Cart, error) {
	cart := m.cart(userID)
	for id, qty := range items {
		if _, ok := m.products[id]; !ok {
			continue
		}
		cart[id] += qty
	}
	return m.GetCart(ctx, userID)
}

// mockCheckoutStore implements CheckoutStore with overridable functions.
type mockCheckoutStore struct {
	GetUserFunc               func(ctx context.Context, id int64) (domain.User, error)
	GetCartFunc               func(ctx context.Context, userID int64) (domain.Cart, error)
	GetProductFunc            func(ctx context.Context, id int64) (domain.Product, error)
	CreateCheckoutAttemptFunc func(ctx context.Context, sessionID string, userID, amountCents int64) error
	GetCheckoutAttemptFunc    func(ctx context.Context, sessionID string) (domain.CheckoutAttempt, error)
}

func (m *mockCheckoutStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return m.GetUserFunc(ctx, id)
}
func (m *mockCheckoutStore) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	return m.GetCartFunc(ctx, userID)
}
func (m *mockCheckoutStore) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return m.GetProductFunc(ctx, id)
}
func (m *mockCheckoutStore) CreateCheckoutAttempt(ctx context.Context, sessionID string, userID, amountCents int64) error {
	if m.CreateCheckoutAttemptFunc != nil {
		return m.CreateCheckoutAttemptFunc(ctx, sessionID, userID, amountCents)
	}
	return nil
}
func (m *mockCheckoutStore) GetCheckoutAttempt(ctx context.Context, sessionID string) (domain.CheckoutAttempt, error) {
	if m.GetCheckoutAttemptFunc != nil {
		return m.GetCheckoutAttemptFunc(ctx, sessionID)
	}
	return domain.CheckoutAttempt{}, errNoRows
}

// memOrderStore is an in-memory OrderStore with real idempotency
// semantics for finalization.
type memOrderStore struct {
	attempts map[string]*domain.CheckoutAttempt
	orders   map[string]domain.Order
	carts    map[int64]domain.Cart
	products map[int64]domain.Product
	nextID   int64
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{
		attempts: map[string]*domain.CheckoutAttempt{},
		orders:   map[string]domain.Order{},
		carts:    map[int64]domain.Cart{},
		products: map[int64]domain.Product{},
		nextID:   1,
	}
}

func (m *memOrderStore) FinalizeOrder(_ context.Context, params repository.FinalizeOrderParams) (domain.Order, bool, error) {
	if existing, ok := m.orders[params.SessionID]; ok {
		return existing, false, nil
	}
	order := domain.Order{
		ID:                m.nextID,
		UserID:            params.UserID,
		CheckoutSessionID: params.SessionID,
		AmountCents:       params.AmountCents,
		Currency:          params.Currency,
	}
	m.nextID++
	for id, qty := range m.carts[params.UserID] {
		p, ok := m.products[id]
		if !ok || qty <= 0 {
			continue
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      id,
			Name:           p.Name,
			Quantity:       qty,
			UnitPricePaise: p.PricePaise,
		})
		delete(m.carts[params.UserID], id)
	}
	m.orders[params.SessionID] = order
	if a, ok := m.attempts[params.SessionID]; ok {
		a.Status = domain.AttemptCompleted
	}
	return order, true, nil
}

func (m *memOrderStore) GetCheckoutAttempt(_ context.Context, sessionID string) (domain.CheckoutAttempt, error) {
	a, ok := m.attempts[sessionID]
	if !ok {
		return domain.CheckoutAttempt{}, errNoRows
	}
	return *a, nil
}

func (m *memOrderStore) SetCheckoutAttemptStatus(_ context.Context, sessionID, status string) error {
	a, ok := m.attempts[sessionID]
	if !ok {
		return errNoRows
	}
	a.Status = status
	return nil
}

func (m *memOrderStore) ListOrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// memUserStore is an in-memory UserStore keyed by email.
type memUserStore struct {
	users  map[string]domain.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]domain.User{}, nextID: 1}
}

func (m *memUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (domain.User, error) {
	if _, ok := m.users[email]; ok {
		return domain.User{}, errUniqueViolation
	}
	u := domain.User{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
		Address:      domain.AddressUnavailable,
	}
	m.nextID++
	m.users[email] = u
	return u, nil
}

func (m *memUserStore) GetUser(_ context.Context, id int64) (domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, errNoRows
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := m.users[email]
	if !ok {
		return domain.User{}, errNoRows
	}
	return u, nil
}

func (m *memUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *memUserStore) UpdateUser(_ context.Context, id int64, params domain.UpdateUserParams) (domain.User, error) {
	for email, u := range m.users {
		if u.ID != id {
			continue
		}
		if params.Name != nil {
			u.Name = *params.Name
		}
		if params.Address != nil {
			u.Address = *params.Address
		}
		if params.Phone != nil {
			u.Phone = *params.Phone
		}
		m.users[email] = u
		return u, nil
	}
	return domain.User{}, errNoRows
}
