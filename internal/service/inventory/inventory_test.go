package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
	"github.com/mamadbah2/poultryops/internal/service/filter"
)

func newTestService(t *testing.T, today time.Time) *Service {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.SeedSampleData(context.Background(), store, nil, ""))

	svc := NewService(store, config.DefaultRules(), nil)
	svc.now = func() time.Time { return today }
	return svc
}

func itemNames(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestStock(t *testing.T) {
	svc := newTestService(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	r, err := svc.Stock(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Desi Finisher", "Desi Free Starter", "Desi Grower", "Desi Starter",
		"Lasota ND", "Vitamin B Complex",
	}, itemNames(r.Items))

	byName := make(map[string]Item)
	for _, it := range r.Items {
		byName[it.Name] = it
	}

	starter := byName["Desi Starter"]
	assert.Equal(t, 50.0, starter.Received)
	assert.Equal(t, 2.0, starter.Issued)
	assert.Equal(t, 48.0, starter.Quantity)
	assert.Equal(t, 85440.0, starter.Value)
	assert.Equal(t, "2024-04-18", starter.LastUpdated)
	assert.Equal(t, InStock, starter.Status)

	grower := byName["Desi Grower"]
	assert.Equal(t, 380.0, grower.Received)
	assert.Equal(t, 161.6, grower.Issued)
	assert.Equal(t, 218.4, grower.Quantity)
	assert.Equal(t, 372429.47, grower.Value)

	finisher := byName["Desi Finisher"]
	assert.Equal(t, 0.0, finisher.Quantity, "consumption without receipts clamps at zero")
	assert.Equal(t, OutOfStock, finisher.Status)
	assert.Equal(t, "2024-04-17", finisher.LastUpdated)

	vitamins := byName["Vitamin B Complex"]
	assert.Equal(t, ItemMedicine, vitamins.Type)
	assert.Equal(t, "bottle", vitamins.Unit)
	assert.Equal(t, 4.0, vitamins.Quantity)
	assert.Equal(t, LowStock, vitamins.Status)

	assert.Equal(t, InStock, byName["Lasota ND"].Status)

	assert.Equal(t, 266.4, r.FeedBags)
	assert.Equal(t, 2, r.MedicineTypes)
	assert.Equal(t, 1, r.LowStockItems)
	assert.Equal(t, 2, r.OutOfStockItems)
	assert.Equal(t, 461569.47, r.TotalValue)
}

func TestStockWritesOffExpiredMedicine(t *testing.T) {
	svc := newTestService(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

	r, err := svc.Stock(context.Background())
	require.NoError(t, err)

	for _, it := range r.Items {
		switch it.Name {
		case "Lasota ND":
			assert.Equal(t, 0.0, it.Quantity)
			assert.Equal(t, OutOfStock, it.Status)
			assert.Equal(t, 0.0, it.Value)
		case "Vitamin B Complex":
			assert.Equal(t, 4.0, it.Quantity)
		}
	}
}

type failingSource struct{}

func (failingSource) ListBatches(context.Context) ([]models.Batch, error) {
	return nil, errors.New("store offline")
}

func TestStockPropagatesSourceErrors(t *testing.T) {
	svc := NewService(failingSource{}, config.DefaultRules(), nil)

	_, err := svc.Stock(context.Background())
	assert.ErrorContains(t, err, "store offline")

	_, err = svc.Purchases(context.Background(), "", filter.Query{})
	assert.ErrorContains(t, err, "store offline")
}

func purchaseIDs(items []Purchase) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestPurchases(t *testing.T) {
	svc := newTestService(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tests := []struct {
		name     string
		kind     ItemType
		query    filter.Query
		want     []string
		feed     float64
		medicine float64
	}{
		{
			name:     "everything",
			want:     []string{"FE001", "ME001", "FE002", "ME002", "FE003"},
			feed:     737000,
			medicine: 3700,
		},
		{
			name: "feed only",
			kind: ItemFeed,
			want: []string{"FE001", "FE002", "FE003"},
			feed: 737000,
		},
		{
			name:     "medicine only",
			kind:     ItemMedicine,
			want:     []string{"ME001", "ME002"},
			medicine: 3700,
		},
		{
			name:     "supplier search",
			query:    filter.Query{Search: "zydus"},
			want:     []string{"ME002"},
			medicine: 1200,
		},
		{
			name:     "date range",
			query:    filter.Query{StartDate: "2024-03-01", EndDate: "2024-03-31"},
			want:     []string{"FE001", "ME001", "FE002", "ME002"},
			feed:     159000,
			medicine: 3700,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, err := svc.Purchases(ctx, tt.kind, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, purchaseIDs(ledger.Items))
			assert.Equal(t, tt.feed, ledger.FeedTotal)
			assert.Equal(t, tt.medicine, ledger.MedicineTotal)
			assert.Equal(t, tt.feed+tt.medicine, ledger.Total)
		})
	}
}

func TestPurchaseCarriesBatchContext(t *testing.T) {
	svc := newTestService(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	ledger, err := svc.Purchases(context.Background(), ItemFeed, filter.Query{Search: "desi grower"})
	require.NoError(t, err)
	require.Len(t, ledger.Items, 2)

	p := ledger.Items[0]
	assert.Equal(t, "B2024-002", p.BatchCode)
	assert.Equal(t, "Godrej Agrovet", p.Supplier)
	assert.Equal(t, "bags", p.Unit)
	assert.Equal(t, 40.0, p.Quantity)
	assert.Equal(t, "Admin", p.PurchasedBy)
}

func TestParseItemType(t *testing.T) {
	for _, raw := range []string{"", "all"} {
		kind, err := ParseItemType(raw)
		require.NoError(t, err)
		assert.Empty(t, kind)
	}

	kind, err := ParseItemType("medicine")
	require.NoError(t, err)
	assert.Equal(t, ItemMedicine, kind)

	_, err = ParseItemType("vaccines")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
