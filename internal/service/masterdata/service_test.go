package masterdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.SeedSampleData(context.Background(), store, nil, ""))

	svc := NewService(store, config.DefaultRules(), nil)
	svc.now = func() time.Time { return time.Date(2024, time.April, 20, 9, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return "ID" + string(rune('0'+n))
	}
	return svc
}

func TestPriceFor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		chick  models.ChickType
		weight float64
		on     string
		price  float64
		source string
		band   string
	}{
		{"light band", models.ChickTNAseel, 1800, "2024-04-18", 230, SourceBand, "PB01"},
		{"band edge is inclusive", models.ChickTNAseel, 2000, "2024-04-18", 230, SourceBand, "PB01"},
		{"heavy band", models.ChickTNAseel, 2500, "2024-04-18", 250, SourceBand, "PB02"},
		{"name ignores case", "tn aseel", 2500, "2024-04-18", 250, SourceBand, "PB02"},
		{"outside every band", models.ChickTNAseel, 3500, "2024-04-18", 230, SourceBirdType, ""},
		{"before bands take effect", models.ChickTNAseel, 2500, "2023-12-31", 230, SourceBirdType, ""},
		{"no bands for type", models.ChickBroiler, 2000, "2024-04-18", 160, SourceBirdType, ""},
		{"inactive type", models.ChickSonali, 2000, "2024-04-18", 120, SourceDefault, ""},
		{"unknown type", "Kadaknath", 2000, "2024-04-18", 120, SourceDefault, ""},
		{"today by default", models.ChickTNAseel, 2500, "", 250, SourceBand, "PB02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.PriceFor(ctx, tt.chick, tt.weight, tt.on)
			require.NoError(t, err)
			assert.Equal(t, tt.price, q.PricePerKg)
			assert.Equal(t, tt.source, q.Source)
			assert.Equal(t, tt.band, q.BandID)
		})
	}

	q, err := svc.PriceFor(ctx, models.ChickTNAseel, 2500, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-20", q.Date)

	_, err = svc.PriceFor(ctx, models.ChickTNAseel, 2500, "18/04/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewerBandWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePriceBand(ctx, models.PriceBand{
		BirdTypeID: "BT01", Name: "TN Aseel heavy 2024-04",
		MinWeightGrams: 2001, MaxWeightGrams: 3000, PricePerKg: 265, EffectiveFrom: "2024-04-01",
	})
	require.NoError(t, err)

	price, err := svc.PricePerKg(ctx, models.ChickTNAseel, 2500, "2024-04-18")
	require.NoError(t, err)
	assert.Equal(t, 265.0, price)

	price, err = svc.PricePerKg(ctx, models.ChickTNAseel, 2500, "2024-03-18")
	require.NoError(t, err)
	assert.Equal(t, 250.0, price, "older sales keep the price in force at the time")
}

func TestClosedBandStopsApplying(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bands, err := svc.ListPriceBands(ctx, "BT01")
	require.NoError(t, err)
	require.Len(t, bands, 2)

	closed := bands[1]
	closed.EffectiveTo = "2024-03-31"
	_, err = svc.UpdatePriceBand(ctx, closed.ID, closed)
	require.NoError(t, err)

	q, err := svc.PriceFor(ctx, models.ChickTNAseel, 2500, "2024-04-18")
	require.NoError(t, err)
	assert.Equal(t, SourceBirdType, q.Source)
}

func TestPriceBandValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	band, err := svc.CreatePriceBand(ctx, models.PriceBand{BirdTypeID: "BT02", MinWeightGrams: 3501, MaxWeightGrams: 4000, PricePerKg: 255})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-20", band.EffectiveFrom)
	assert.True(t, band.IsActive)

	invalid := []models.PriceBand{
		{BirdTypeID: "BT99", MinWeightGrams: 1000, MaxWeightGrams: 2000, PricePerKg: 200},
		{BirdTypeID: "BT01", MinWeightGrams: 2000, MaxWeightGrams: 1000, PricePerKg: 200},
		{BirdTypeID: "BT01", MinWeightGrams: 1000, MaxWeightGrams: 2000, PricePerKg: 0},
		{BirdTypeID: "BT01", MinWeightGrams: 1000, MaxWeightGrams: 2000, PricePerKg: 200, EffectiveFrom: "2024-05-01", EffectiveTo: "2024-04-01"},
	}
	for _, p := range invalid {
		_, err := svc.CreatePriceBand(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	_, err = svc.UpdatePriceBand(ctx, "PB99", models.PriceBand{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBirdTypes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListBirdTypes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 7)
	active, err := svc.ListBirdTypes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 6)

	created, err := svc.CreateBirdType(ctx, models.BirdType{Name: " Kadaknath ", DefaultPrice: 450, MinWeightGrams: 1000, MaxWeightGrams: 2000})
	require.NoError(t, err)
	assert.Equal(t, models.ChickType("Kadaknath"), created.Name)
	assert.True(t, created.IsActive)

	_, err = svc.CreateBirdType(ctx, models.BirdType{Name: models.ChickTNAseel, DefaultPrice: 200})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateBirdType(ctx, models.BirdType{Name: "Negative", DefaultPrice: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	created.IsActive = false
	updated, err := svc.UpdateBirdType(ctx, created.ID, created)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	q, err := svc.PriceFor(ctx, "Kadaknath", 1500, "2024-04-18")
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, q.Source)

	_, err = svc.UpdateBirdType(ctx, "BT99", models.BirdType{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRates(t *testing.T) {
	r := newTestService(t).Rates()
	assert.Equal(t, 75.0, r.Farmer.SharePercent)
	assert.Equal(t, 1.5, r.Standards.FCR)
	assert.Equal(t, 170.0, r.Standards.ProductionCostPerKg)
	assert.Equal(t, 120.0, r.DefaultPricePerKg)
}
