package batches

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/masterdata"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

type recordingObserver struct {
	entries []models.DailyEntry
	rates   []float64
}

func (o *recordingObserver) DailyEntryRecorded(_ context.Context, b models.Batch, e models.DailyEntry) {
	o.entries = append(o.entries, e)
	o.rates = append(o.rates, b.MortalityRate)
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return newTestServiceWithStore(t, memory.NewStore(), opts...)
}

func newTestServiceWithStore(t *testing.T, store *memory.Store, opts ...Option) *Service {
	t.Helper()
	require.NoError(t, memory.SeedSampleData(context.Background(), store, nil, ""))

	svc := NewService(store, store, metrics.NewCalculator(config.DefaultRules()), nil, opts...)
	svc.now = func() time.Time { return time.Date(2024, time.April, 20, 10, 0, 0, 0, time.UTC) }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	page, err := svc.List(ctx, filter.Query{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 9, page.PageSize)

	page, err = svc.List(ctx, filter.Query{IDs: []string{"F2024-001"}}, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "B2024-001", page.Items[0].ID)
	assert.Equal(t, "B2024-003", page.Items[1].ID)

	page, err = svc.List(ctx, filter.Query{ActiveOnly: true, Search: "jane"}, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B2024-002", page.Items[0].ID)

	page, err = svc.List(ctx, filter.Query{}, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestGetMissing(t *testing.T) {
	_, err := newTestService(t).Get(context.Background(), "B1999-001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	b, err := svc.Create(ctx, models.Batch{
		FarmerID:   "F2024-002",
		FarmerName: "ignored",
		ChickType:  models.ChickSonali,
		StartDate:  "2024-05-01",
		TotalBirds: 2000,
		FeedStock:  40,
		Status:     models.BatchCompleted,
		DailyEntries: []models.DailyEntry{
			{Mortality: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "B2024-004", b.BatchCode)
	assert.Equal(t, b.BatchCode, b.ID)
	assert.Equal(t, "Suresh Patel", b.FarmerName)
	assert.Equal(t, "SP Poultry", b.FarmName)
	assert.Equal(t, 2000, b.CurrentBirds)
	assert.Equal(t, "2024-05-01", b.HatchingDate)
	assert.Equal(t, models.BatchActive, b.Status)
	assert.Empty(t, b.DailyEntries)

	next, err := svc.Create(ctx, models.Batch{FarmerID: "F2024-003", StartDate: "2025-01-10", TotalBirds: 100})
	require.NoError(t, err)
	assert.Equal(t, "B2025-001", next.BatchCode)

	stored, err := svc.Get(ctx, "B2024-004")
	require.NoError(t, err)
	assert.Equal(t, 2000, stored.TotalBirds)
}

func TestCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name  string
		batch models.Batch
	}{
		{"no birds", models.Batch{FarmerID: "F2024-001", StartDate: "2024-05-01"}},
		{"current above total", models.Batch{FarmerID: "F2024-001", StartDate: "2024-05-01", TotalBirds: 10, CurrentBirds: 11}},
		{"unknown farmer", models.Batch{FarmerID: "F1999-001", StartDate: "2024-05-01", TotalBirds: 10}},
		{"bad date", models.Batch{FarmerID: "F2024-001", StartDate: "01/05/2024", TotalBirds: 10}},
		{"missing farmer", models.Batch{StartDate: "2024-05-01", TotalBirds: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.batch)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestAddDailyEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	obs := &recordingObserver{}
	svc.Subscribe(obs)

	b, entry, err := svc.AddDailyEntry(ctx, "B2024-001", models.DailyEntry{
		Date:         "2024-04-19",
		Mortality:    2,
		WeakBirds:    1,
		LegWeakBirds: 1,
		FeedBags:     2,
		AvgWeight:    2550,
	}, "John Doe")
	require.NoError(t, err)

	assert.Equal(t, "id-1", entry.ID)
	assert.Equal(t, 4, entry.TotalMortality)
	assert.Equal(t, 49, entry.BirdAge)
	assert.Equal(t, "John Doe", entry.AddedBy)

	assert.Equal(t, 4488, b.CurrentBirds)
	assert.Equal(t, 12, b.TotalMortality)
	assert.Equal(t, 0.24, b.MortalityRate)
	assert.Equal(t, 152.0, b.FeedUsed)
	assert.Equal(t, 248.0, b.FeedStock)
	assert.Equal(t, 1, b.WeakBirds)
	assert.Equal(t, 1, b.LegWeakBirds)
	assert.Equal(t, 2550.0, b.BirdWeightAvg)
	require.Len(t, b.DailyEntries, 3)
	assert.Equal(t, "DE001", b.DailyEntries[0].ID)
	assert.Equal(t, 3, b.DailyEntries[0].Mortality)

	require.Len(t, obs.entries, 1)
	assert.Equal(t, 0.24, obs.rates[0])
}

func TestAddDailyEntryRejections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	small, err := svc.Create(ctx, models.Batch{FarmerID: "F2024-001", StartDate: "2024-04-01", TotalBirds: 10})
	require.NoError(t, err)

	_, _, err = svc.AddDailyEntry(ctx, small.ID, models.DailyEntry{Mortality: 8, WeakBirds: 3}, "John Doe")
	assert.ErrorIs(t, err, ErrInsufficientBirds)

	_, _, err = svc.AddDailyEntry(ctx, "B2024-003", models.DailyEntry{Mortality: 1}, "John Doe")
	assert.ErrorIs(t, err, ErrBatchCompleted)

	_, _, err = svc.AddDailyEntry(ctx, "missing", models.DailyEntry{Mortality: 1}, "John Doe")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.AddDailyEntry(ctx, small.ID, models.DailyEntry{Mortality: -1}, "John Doe")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	unchanged, err := svc.Get(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.CurrentBirds)
	assert.Empty(t, unchanged.DailyEntries)

	b, entry, err := svc.AddDailyEntry(ctx, small.ID, models.DailyEntry{Mortality: 10}, "John Doe")
	require.NoError(t, err)
	assert.Equal(t, 0, b.CurrentBirds)
	assert.Equal(t, "2024-04-20", entry.Date)
	assert.Equal(t, 100.0, b.MortalityRate)
}

func TestAddSalesEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	b, sale, err := svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{
		TraderID:    "T2024-001",
		Trader:      "Mohammed Ali",
		Birds:       100,
		AvgWeight:   2000,
		TotalAmount: 1,
	}, "Sales Team")
	require.NoError(t, err)
	assert.Equal(t, 120.0, sale.PricePerKg)
	assert.Equal(t, 24000.0, sale.TotalAmount)
	assert.Equal(t, models.TransportCompany, sale.TransportType)
	assert.Equal(t, 4392, b.CurrentBirds)
	assert.Equal(t, 174000.0, b.GrossAmount)

	_, _, err = svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{Birds: 5000, AvgWeight: 2000}, "Sales Team")
	assert.ErrorIs(t, err, ErrInsufficientBirds)

	_, _, err = svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{Birds: 1, AvgWeight: 2000, TransportType: "truck"}, "Sales Team")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, _, err = svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{Birds: 0, AvgWeight: 2000}, "Sales Team")
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLedgerEntries(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	b, feed, err := svc.AddFeedEntry(ctx, "B2024-001", models.FeedEntry{
		FeedType:     models.FeedDesiGrower,
		NumberOfBags: 10,
		Price:        1800,
		Discount:     500,
	}, "Admin")
	require.NoError(t, err)
	assert.Equal(t, models.FeedPurchase, feed.EntryType)
	assert.Equal(t, 500.0, feed.TotalWeight)
	assert.Equal(t, 17500.0, feed.TotalAmount)
	assert.Equal(t, 260.0, b.FeedStock)
	assert.Equal(t, 113000.0, b.ProductionCost)

	_, _, err = svc.AddFeedEntry(ctx, "B2024-001", models.FeedEntry{EntryType: models.FeedTransferOut, NumberOfBags: 300}, "Admin")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	b, _, err = svc.AddFeedEntry(ctx, "B2024-001", models.FeedEntry{EntryType: models.FeedTransferOut, NumberOfBags: 60}, "Admin")
	require.NoError(t, err)
	assert.Equal(t, 200.0, b.FeedStock)
	assert.Equal(t, 113000.0, b.ProductionCost, "transfers are not a cost")

	b, _, err = svc.AddMedicineEntry(ctx, "B2024-001", models.MedicineEntry{MedicineName: "Vitamin B", Quantity: 2, Amount: 1500}, "John Doe")
	require.NoError(t, err)
	assert.Equal(t, 114500.0, b.ProductionCost)

	_, _, err = svc.AddExpenseEntry(ctx, "B2024-001", models.ExpenseEntry{Purpose: "Electricity", Amount: 800, PaymentMode: "cheque"}, "Admin")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	b, expense, err := svc.AddExpenseEntry(ctx, "B2024-001", models.ExpenseEntry{Purpose: "Electricity", Amount: 800}, "Admin")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, expense.PaymentMode)
	assert.Equal(t, 115300.0, b.ProductionCost)

	b, eggs, err := svc.AddEggEntry(ctx, "B2024-001", models.EggEntry{NumberOfEggs: 100, Rate: 6.5}, "Sales Team")
	require.NoError(t, err)
	assert.Equal(t, 650.0, eggs.TotalAmount)
	assert.Equal(t, 150650.0, b.GrossAmount)

	_, _, err = svc.AddMedicineEntry(ctx, "B2024-003", models.MedicineEntry{MedicineName: "Vitamin B", Quantity: 1}, "John Doe")
	assert.ErrorIs(t, err, ErrBatchCompleted)
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Complete(ctx, "B2024-002", "2024-01-01", nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	b, err := svc.Complete(ctx, "B2024-002", "2024-05-01", nil)
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, b.Status)
	require.NotNil(t, b.EndDate)
	assert.Equal(t, "2024-05-01", *b.EndDate)
	assert.Equal(t, 67237.5, b.FarmerShare)

	_, err = svc.Complete(ctx, "B2024-002", "", nil)
	assert.ErrorIs(t, err, ErrBatchCompleted)

	_, _, err = svc.AddSalesEntry(ctx, "B2024-002", models.SalesEntry{Birds: 1, AvgWeight: 2000}, "Sales Team")
	assert.ErrorIs(t, err, ErrBatchCompleted)
}

func TestMetrics(t *testing.T) {
	m, err := newTestService(t).Metrics(context.Background(), "B2024-001")
	require.NoError(t, err)

	assert.Equal(t, 8, m.TotalMortality)
	assert.Equal(t, 0.16, m.MortalityRate)
	assert.Equal(t, 150000.0, m.Financials.SalesRevenue)
	assert.Equal(t, 89000.0, m.Financials.FeedCost)
	assert.Equal(t, 2500.0, m.Financials.MedicineCost)
	assert.Equal(t, 4000.0, m.Financials.OtherExpenses)
	assert.Equal(t, 95500.0, m.Financials.TotalCost)
	assert.Equal(t, m.Financials.TotalCost, m.Financials.ProductionCost)
	assert.Equal(t, 500, m.Financials.BirdsSold)
	assert.Equal(t, 120000.0, m.Financials.FarmerShare)
	assert.Equal(t, 30000.0, m.Financials.CompanyShare)
	assert.Equal(t, 300.0, m.Financials.RevenuePerBird)
}

func TestStoredFiguresMatchMetrics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, _, err := svc.AddDailyEntry(ctx, "B2024-002", models.DailyEntry{Mortality: 3, FeedUsed: 75, AvgWeight: 2350}, "Jane Smith")
	require.NoError(t, err)

	for _, id := range []string{"B2024-001", "B2024-002", "B2024-003"} {
		t.Run(id, func(t *testing.T) {
			b, err := svc.Get(ctx, id)
			require.NoError(t, err)
			m, err := svc.Metrics(ctx, id)
			require.NoError(t, err)

			assert.Equal(t, m.TotalMortality, b.TotalMortality)
			assert.Equal(t, m.MortalityRate, b.MortalityRate)
			assert.Equal(t, m.FCR, b.FCR)
			assert.Equal(t, m.AvgWeight, b.BirdWeightAvg)
			assert.Equal(t, m.Financials.TotalCost, b.ProductionCost)
			assert.InDelta(t, m.Financials.SalesRevenue+m.Financials.EggRevenue, b.GrossAmount, 0.001)
			assert.Equal(t, m.Settlement.FarmerShare, b.FarmerShare)
			assert.NotEqual(t, m.Financials.GrossAmount, m.Financials.CompanyShare)
		})
	}
}

func TestCompleteFarmerShare(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	negative := -1.0
	_, err := svc.Complete(ctx, "B2024-001", "2024-05-01", &negative)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	agreed := 100000.0
	b, err := svc.Complete(ctx, "B2024-001", "2024-05-01", &agreed)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, b.FarmerShare)

	m, err := svc.Metrics(ctx, "B2024-001")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, m.Financials.CompanyShare)
	assert.Equal(t, 120000.0, m.Settlement.FarmerShare, "the rate-based settlement is still reported")
}

func TestSalesPricedFromPriceList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	prices := masterdata.NewService(store, config.DefaultRules(), nil)
	svc := newTestServiceWithStore(t, store, WithPriceList(prices))

	tests := []struct {
		name   string
		weight float64
		price  float64
	}{
		{"light band", 2000, 230},
		{"heavy band", 2600, 250},
		{"outside every band uses the bird type default", 3200, 230},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sale, err := svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{Birds: 10, AvgWeight: tt.weight}, "Sales Team")
			require.NoError(t, err)
			assert.Equal(t, tt.price, sale.PricePerKg)
			assert.Equal(t, metrics.SaleTotal(10, tt.weight, tt.price), sale.TotalAmount)
		})
	}

	_, sale, err := svc.AddSalesEntry(ctx, "B2024-001", models.SalesEntry{Birds: 10, AvgWeight: 2600, PricePerKg: 200}, "Sales Team")
	require.NoError(t, err)
	assert.Equal(t, 200.0, sale.PricePerKg, "an explicit price is kept")

	sonali, err := svc.Create(ctx, models.Batch{FarmerID: "F2024-003", ChickType: models.ChickSonali, StartDate: "2024-04-01", TotalBirds: 100})
	require.NoError(t, err)
	_, sale, err = svc.AddSalesEntry(ctx, sonali.ID, models.SalesEntry{Birds: 10, AvgWeight: 2000}, "Sales Team")
	require.NoError(t, err)
	assert.Equal(t, 120.0, sale.PricePerKg, "inactive bird type falls back to the configured default")

	_, _, err = svc.AddSalesEntry(ctx, "B2099-001", models.SalesEntry{Birds: 1, AvgWeight: 2000}, "Sales Team")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivities(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name  string
		kind  models.ActivityKind
		query filter.Query
		want  []string
	}{
		{"all sales in batch order", models.ActivitySales, filter.Query{}, []string{"SE001", "SE002", "SE003", "SE004"}},
		{"daily by farmer", models.ActivityDaily, filter.Query{IDs: []string{"F2024-002"}}, []string{"DE003", "DE004"}},
		{"sales search by trader", models.ActivitySales, filter.Query{Search: "ALI"}, []string{"SE001", "SE003"}},
		{"daily by date", models.ActivityDaily, filter.Query{StartDate: "2024-04-18", EndDate: "2024-04-18"}, []string{"DE002", "DE004"}},
		{"medication", models.ActivityMedication, filter.Query{}, []string{"ME001", "ME002"}},
		{"feed search by type", models.ActivityFeed, filter.Query{Search: "starter"}, []string{"FE001"}},
		{"inverted range", models.ActivityDaily, filter.Query{StartDate: "2024-05-01", EndDate: "2024-04-01"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Activities(ctx, tt.kind, tt.query, 1)
			require.NoError(t, err)
			got := make([]string, 0, len(page.Items))
			for _, a := range page.Items {
				got = append(got, a.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.Activities(ctx, "vaccination", filter.Query{}, 1)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}
