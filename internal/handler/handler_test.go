package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelpalace/storefront-api/internal/domain/cart"
	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
	"github.com/pixelpalace/storefront-api/internal/domain/checkout"
	"github.com/pixelpalace/storefront-api/internal/domain/order"
	"github.com/pixelpalace/storefront-api/internal/domain/profile"
	"github.com/pixelpalace/storefront-api/internal/events"
)

// --- Mock implementations ---

type mockCategoryRepo struct {
	byID map[int]catalog.Category
}

func (m *mockCategoryRepo) List(context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int) (*catalog.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return &c, nil
}

func (m *mockCategoryRepo) Create(_ context.Context, c catalog.Category) (int, error) {
	id := len(m.byID) + 1
	c.ID = id
	m.byID[id] = c
	return id, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, id int, _ catalog.CategoryUpdate) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockProductRepo struct {
	byID       map[int]catalog.Product
	lastFilter catalog.SearchFilter
}

func (m *mockProductRepo) Search(_ context.Context, f catalog.SearchFilter) ([]catalog.Product, error) {
	m.lastFilter = f
	out := make([]catalog.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) ListByCategory(_ context.Context, categoryID int) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range m.byID {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) Create(_ context.Context, p catalog.Product) (int, error) {
	id := len(m.byID) + 1
	p.ID = id
	m.byID[id] = p
	return id, nil
}

func (m *mockProductRepo) Update(_ context.Context, id int, _ catalog.ProductUpdate) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockProfileRepo struct {
	byUser map[int]profile.Profile
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID int) (*profile.Profile, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return &p, nil
}

func (m *mockProfileRepo) Create(_ context.Context, p profile.Profile) error {
	m.byUser[p.UserID] = p
	return nil
}

func (m *mockProfileRepo) Update(_ context.Context, userID int, _ profile.Update) error {
	if _, ok := m.byUser[userID]; !ok {
		return profile.ErrNotFound
	}
	return nil
}

type mockCartRepo struct {
	products map[int]catalog.Product
	lines    map[int]map[int]int // userID -> productID -> quantity
}

func newMockCartRepo(products map[int]catalog.Product) *mockCartRepo {
	return &mockCartRepo{
		products: products,
		lines:    make(map[int]map[int]int),
	}
}

func (m *mockCartRepo) GetByUserID(_ context.Context, userID int) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID}
	for pid, qty := range m.lines[userID] {
		c.Lines = append(c.Lines, cart.Line{Product: m.products[pid], Quantity: qty})
	}
	return c, nil
}

func (m *mockCartRepo) AddProduct(_ context.Context, userID, productID int) error {
	if _, ok := m.products[productID]; !ok {
		return catalog.ErrProductNotFound
	}
	if m.lines[userID] == nil {
		m.lines[userID] = make(map[int]int)
	}
	m.lines[userID][productID]++
	return nil
}

func (m *mockCartRepo) SetQuantity(_ context.Context, userID, productID, quantity int) error {
	if quantity < 0 {
		return cart.ErrNegativeQuantity
	}
	if _, ok := m.lines[userID][productID]; !ok {
		return nil
	}
	if quantity == 0 {
		delete(m.lines[userID], productID)
		return nil
	}
	m.lines[userID][productID] = quantity
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID int) error {
	delete(m.lines, userID)
	return nil
}

// mockOrderRepo and mockStock complete the transaction-scoped stores for the
// checkout endpoint tests.
type mockOrderRepo struct {
	lastOrder *order.Order
	nextID    int
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order, lines []order.Line) (int, error) {
	if len(lines) == 0 {
		return 0, order.ErrNoLines
	}
	m.lastOrder = o
	if m.nextID == 0 {
		m.nextID = 1
	}
	return m.nextID, nil
}

type mockStock struct {
	products map[int]catalog.Product
}

func (m *mockStock) DecrementStock(_ context.Context, productID, quantity int) error {
	p, ok := m.products[productID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if p.Stock < quantity {
		return &catalog.InsufficientStockError{ProductID: productID, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	m.products[productID] = p
	return nil
}

// passthroughTx runs fn directly against the shared mocks. Rollback is not
// modelled here; the service tests cover transactional behaviour.
type passthroughTx struct {
	stores checkout.Stores
}

func (t passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context, s checkout.Stores) error) error {
	return fn(ctx, t.stores)
}

// --- Helpers ---

type fixture struct {
	router   *gin.Engine
	products *mockProductRepo
	carts    *mockCartRepo
	profiles *mockProfileRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &mockProductRepo{byID: map[int]catalog.Product{
		5: {
			ID:         5,
			Name:       "Widget",
			Price:      decimal.RequireFromString("10.00"),
			CategoryID: 1,
			Stock:      10,
		},
	}}
	categories := &mockCategoryRepo{byID: map[int]catalog.Category{
		1: {ID: 1, Name: "Electronics", Description: "Gadgets"},
	}}
	profiles := &mockProfileRepo{byUser: map[int]profile.Profile{
		1: {UserID: 1, Address: "123 Main St", City: "Springfield", State: "IL", Zip: "62704"},
	}}
	carts := newMockCartRepo(products.byID)

	tx := passthroughTx{stores: checkout.Stores{
		Carts:    carts,
		Profiles: profiles,
		Orders:   &mockOrderRepo{nextID: 42},
		Stock:    &mockStock{products: products.byID},
	}}
	svc := checkout.NewService(tx, events.NopPublisher{}, zap.NewNop())

	router := gin.New()
	h := NewHandler(categories, products, profiles, carts, svc, zap.NewNop())
	h.Routes(router)

	return &fixture{router: router, products: products, carts: carts, profiles: profiles}
}

func (f *fixture) do(t *testing.T, method, path, body string, asUser bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser {
		req.Header.Set("X-User-ID", "1")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// --- Tests ---

func TestGetProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/5", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.Equal(t, float64(5), resp["id"])
	assert.Equal(t, "Widget", resp["name"])
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/999", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProduct_InvalidID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/abc", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchProducts_FilterParsing(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products?category_id=1&min_price=5.00&subcategory=Phones", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	filter := f.products.lastFilter
	require.NotNil(t, filter.CategoryID)
	assert.Equal(t, 1, *filter.CategoryID)
	require.NotNil(t, filter.MinPrice)
	assert.True(t, filter.MinPrice.Equal(decimal.RequireFromString("5.00")))
	assert.Nil(t, filter.MaxPrice)
	require.NotNil(t, filter.Subcategory)
	assert.Equal(t, "Phones", *filter.Subcategory)
}

func TestSearchProducts_NoFilters(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	filter := f.products.lastFilter
	assert.Nil(t, filter.CategoryID)
	assert.Nil(t, filter.MinPrice)
	assert.Nil(t, filter.MaxPrice)
	assert.Nil(t, filter.Subcategory)
}

func TestSearchProducts_BadPrice(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products?min_price=cheap", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/categories", `{"name":"Fashion","description":"Clothes"}`, false)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Fashion", resp["name"])
}

func TestCart_RequiresIdentity(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/cart", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCart_AddAndGet(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/products/5", "", true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/cart/products/5", "", true)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Lines []struct {
			Quantity int `json:"quantity"`
		} `json:"lines"`
		Total decimal.Decimal `json:"total"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestCart_AddUnknownProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/products/999", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_SetNegativeQuantity(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)

	w := f.do(t, http.MethodPut, "/cart/products/5", `{"quantity":-1}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCart_SetZeroQuantityRemovesLine(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)

	w := f.do(t, http.MethodPut, "/cart/products/5", `{"quantity":0}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lines []any `json:"lines"`
	}
	decodeJSON(t, w, &resp)
	assert.Empty(t, resp.Lines)
}

func TestCart_Clear(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)

	w := f.do(t, http.MethodDelete, "/cart", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/cart", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lines []any `json:"lines"`
	}
	decodeJSON(t, w, &resp)
	assert.Empty(t, resp.Lines)
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)

	w := f.do(t, http.MethodPost, "/cart/checkout", "", true)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		OrderID int             `json:"order_id"`
		Total   decimal.Decimal `json:"total"`
		Message string          `json:"message"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, 42, resp.OrderID)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("30.00")), "total = %s", resp.Total)
	assert.Equal(t, "Checkout Successful!", resp.Message)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/checkout", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/cart/products/5", "", true)
	f.carts.lines[1][5] = 11 // more than the 10 in stock

	w := f.do(t, http.MethodPost, "/cart/checkout", "", true)
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp.Message, "insufficient stock")
}

func TestProfile_GetMissing(t *testing.T) {
	f := newFixture(t)
	delete(f.profiles.byUser, 1)

	w := f.do(t, http.MethodGet, "/profile", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile_Get(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/profile", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Springfield", resp["city"])
}
