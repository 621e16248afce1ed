package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// --- Mock implementations ---

type mockCartRepo struct {
	byID map[string]*Item

	upsertUserID    string
	upsertProductID string
	upsertQuantity  int64

	deletedOne string
	deletedAll bool
}

func (m *mockCartRepo) Upsert(_ context.Context, userID, productID string, quantity int64) (*Item, error) {
	m.upsertUserID = userID
	m.upsertProductID = productID
	m.upsertQuantity = quantity

	// Merge into an existing active line for the same (user, product) pair,
	// the way the real single-statement upsert behaves.
	for _, item := range m.byID {
		if item.UserID == userID && item.ProductID == productID && item.Status == StatusInCart {
			item.Quantity += quantity
			cp := *item
			return &cp, nil
		}
	}

	item := &Item{ID: "generated", UserID: userID, ProductID: productID, Quantity: quantity, Status: StatusInCart}
	if m.byID == nil {
		m.byID = make(map[string]*Item)
	}
	m.byID[item.ID] = item
	cp := *item
	return &cp, nil
}

func (m *mockCartRepo) GetByID(_ context.Context, id string) (*Item, error) {
	item, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, id string, quantity int64) (*Item, error) {
	item, ok := m.byID[id]
	if !ok || item.Status != StatusInCart {
		return nil, ErrNotFound
	}
	item.Quantity = quantity
	cp := *item
	return &cp, nil
}

func (m *mockCartRepo) DeleteOne(_ context.Context, userID, id string) error {
	item, ok := m.byID[id]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(m.byID, id)
	m.deletedOne = id
	return nil
}

func (m *mockCartRepo) DeleteAll(_ context.Context, userID string) (int64, error) {
	var n int64
	for id, item := range m.byID {
		if item.UserID == userID {
			delete(m.byID, id)
			n++
		}
	}
	m.deletedAll = true
	return n, nil
}

func (m *mockCartRepo) ListActive(_ context.Context, _ string, _ pagination.Params) (pagination.Page[Line], error) {
	return pagination.Page[Line]{}, nil
}

func (m *mockCartRepo) ActiveItems(_ context.Context, _ string) ([]Item, error) { return nil, nil }

func (m *mockCartRepo) CountActive(_ context.Context, _ string) (int64, error) {
	return int64(len(m.byID)), nil
}

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, _ []string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetViewByID(_ context.Context, _ string) (*product.View, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) List(_ context.Context, _ pagination.Params) (pagination.Page[product.View], error) {
	return pagination.Page[product.View]{}, nil
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

// --- Tests ---

func TestAddToCart_NewLine(t *testing.T) {
	repo := &mockCartRepo{}
	svc := NewService(repo, newProductRepo(product.Product{ID: "p1", Price: 100}))

	item, err := svc.AddToCart(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, StatusInCart, item.Status)
	assert.Equal(t, "u1", repo.upsertUserID)
	assert.Equal(t, "p1", repo.upsertProductID)
}

func TestAddToCart_MergesQuantities(t *testing.T) {
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 2, Status: StatusInCart},
	}}
	svc := NewService(repo, newProductRepo(product.Product{ID: "p1", Price: 100}))

	item, err := svc.AddToCart(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, "c1", item.ID)
	assert.Equal(t, int64(5), item.Quantity)
	assert.Len(t, repo.byID, 1)
}

func TestAddToCart_ConsumedLineDoesNotMerge(t *testing.T) {
	// A line flipped out of the cart by checkout must not absorb new adds.
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 2, Status: StatusNotInCart},
	}}
	svc := NewService(repo, newProductRepo(product.Product{ID: "p1", Price: 100}))

	item, err := svc.AddToCart(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)
	assert.NotEqual(t, "c1", item.ID)
	assert.Equal(t, int64(3), item.Quantity)
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	svc := NewService(&mockCartRepo{}, newProductRepo())

	for _, qty := range []int64{0, -1} {
		_, err := svc.AddToCart(context.Background(), "u1", "p1", qty)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestAddToCart_ProductNotFound(t *testing.T) {
	svc := NewService(&mockCartRepo{}, newProductRepo())

	_, err := svc.AddToCart(context.Background(), "u1", "missing", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateQuantity_Overwrites(t *testing.T) {
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 5, Status: StatusInCart},
	}}
	svc := NewService(repo, newProductRepo())

	item, err := svc.UpdateQuantity(context.Background(), "c1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
}

func TestUpdateQuantity_Invalid(t *testing.T) {
	svc := NewService(&mockCartRepo{}, newProductRepo())

	_, err := svc.UpdateQuantity(context.Background(), "c1", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantity_NotFound(t *testing.T) {
	svc := NewService(&mockCartRepo{}, newProductRepo())

	_, err := svc.UpdateQuantity(context.Background(), "missing", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemove_One(t *testing.T) {
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 1, Status: StatusInCart},
	}}
	svc := NewService(repo, newProductRepo())

	n, err := svc.Remove(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, repo.byID)
}

func TestRemove_OtherUsersLine(t *testing.T) {
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 1, Status: StatusInCart},
	}}
	svc := NewService(repo, newProductRepo())

	_, err := svc.Remove(context.Background(), "intruder", "c1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.byID, 1)
}

func TestRemove_All(t *testing.T) {
	repo := &mockCartRepo{byID: map[string]*Item{
		"c1": {ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 1, Status: StatusInCart},
		"c2": {ID: "c2", UserID: "u1", ProductID: "p2", Quantity: 2, Status: StatusInCart},
	}}
	svc := NewService(repo, newProductRepo())

	n, err := svc.Remove(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, repo.deletedAll)
}
