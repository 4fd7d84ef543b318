package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

// countingRepo records how many reads reach the underlying store.
type countingRepo struct {
	byID        map[int]catalog.Product
	getCalls    int
	listCalls   int
	searchCalls int
}

func (r *countingRepo) GetByID(_ context.Context, id int) (*catalog.Product, error) {
	r.getCalls++
	p, ok := r.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (r *countingRepo) ListByCategory(_ context.Context, categoryID int) ([]catalog.Product, error) {
	r.listCalls++
	var out []catalog.Product
	for _, p := range r.byID {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *countingRepo) Search(_ context.Context, _ catalog.SearchFilter) ([]catalog.Product, error) {
	r.searchCalls++
	return nil, nil
}

func (r *countingRepo) Create(_ context.Context, p catalog.Product) (int, error) {
	id := len(r.byID) + 1
	p.ID = id
	r.byID[id] = p
	return id, nil
}

func (r *countingRepo) Update(_ context.Context, id int, upd catalog.ProductUpdate) error {
	p, ok := r.byID[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	r.byID[id] = p
	return nil
}

func (r *countingRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.byID[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestCache(t *testing.T) (*ProductCache, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &countingRepo{byID: map[int]catalog.Product{
		1: {ID: 1, Name: "Widget", Price: decimal.RequireFromString("10.00"), CategoryID: 2, Stock: 5},
	}}
	return NewProductCache(repo, rdb, time.Minute, zap.NewNop()), repo, mr
}

func TestGetByID_CachesSecondRead(t *testing.T) {
	c, repo, _ := newTestCache(t)
	ctx := context.Background()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	p, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.00")))

	assert.Equal(t, 1, repo.getCalls)
}

func TestGetByID_MissPassesThroughError(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, err := c.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdate_InvalidatesProductKey(t *testing.T) {
	c, repo, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetByID(ctx, 1)
	require.NoError(t, err)

	name := "Gadget"
	require.NoError(t, c.Update(ctx, 1, catalog.ProductUpdate{Name: &name}))

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", p.Name)
	assert.Equal(t, 2, repo.getCalls)
}

func TestListByCategory_Cached(t *testing.T) {
	c, repo, _ := newTestCache(t)
	ctx := context.Background()

	first, err := c.ListByCategory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := c.ListByCategory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	assert.Equal(t, 1, repo.listCalls)
}

func TestSearch_NeverCached(t *testing.T) {
	c, repo, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Search(ctx, catalog.SearchFilter{})
	require.NoError(t, err)
	_, err = c.Search(ctx, catalog.SearchFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.searchCalls)
}

func TestCorruptEntryFallsBack(t *testing.T) {
	c, repo, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("product:1", "{not json"))

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 1, repo.getCalls)
}

func TestRedisDownDegradesToDatabase(t *testing.T) {
	c, repo, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	_, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls, "every read must reach the database while the cache is down")
}
