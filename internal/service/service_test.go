package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store/sqlite"
)

// 2025-03-14 is a Friday.
var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type memoryCache struct {
	mu         sync.Mutex
	gen        int64
	entries    map[string][]byte
	hits       int
	invalidate int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Generation(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memoryCache) Get(_ context.Context, gen int64, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[fmt.Sprintf("%d:%s", gen, key)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, gen int64, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[fmt.Sprintf("%d:%s", gen, key)] = raw
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidate++
	return nil
}

type fixture struct {
	svc   *Service
	cache *memoryCache
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.EnsurePartners(ctx, DefaultPartners))

	f := &fixture{cache: newMemoryCache(), now: testNow}
	f.svc = New(repo, f.cache, Options{
		Partners:   DefaultPartners,
		Categories: []string{"Arriendo", "Servicios"},
		Location:   time.UTC,
		ReportTTL:  time.Minute,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

func (f *fixture) seedCatalog(t *testing.T) {
	t.Helper()
	for _, req := range []domain.ProductCreateRequest{
		{SKU: "CAM-TEST-S", Name: "Camiseta Test", Category: "Camisetas", Size: "S", Cost: dec("37000"), SalePrice: dec("75000"), Stock: 10, ReorderThreshold: intPtr(3)},
		{SKU: "HOOD-TEST-L", Name: "Hoodie Test", Category: "Hoodies", Size: "L", Cost: dec("120000"), SalePrice: dec("200000"), Stock: 5},
		{SKU: "LOW-STOCK", Name: "Gorra", Category: "Accesorios", Cost: dec("15000"), SalePrice: dec("35000"), Stock: 2},
		{SKU: "NO-STOCK", Name: "Medias", Category: "Accesorios", Cost: dec("5000"), SalePrice: dec("12000"), Stock: 0},
	} {
		_, err := f.svc.CreateProduct(context.Background(), req)
		require.NoError(t, err)
	}
}

func (f *fixture) seedFixedCosts(t *testing.T) {
	t.Helper()
	concepts := map[string]string{
		"Arriendo":   "1210000",
		"Servicios":  "250000",
		"Internet":   "69000",
		"Nomina":     "153000",
		"Transporte": "80000",
		"Software":   "152900",
	}
	for concept, amount := range concepts {
		_, err := f.svc.CreateFixedCost(context.Background(), domain.FixedCostRequest{Concept: concept, MonthlyAmount: dec(amount)})
		require.NoError(t, err)
	}
}

func (f *fixture) stock(t *testing.T, sku string) int {
	t.Helper()
	p, err := f.svc.GetProduct(context.Background(), sku)
	require.NoError(t, err)
	return p.Stock
}
