package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// Financials is the money side of a batch report.
type Financials struct {
	GrossAmount    float64 `json:"grossAmount"`
	ProductionCost float64 `json:"productionCost"`
	NetProfit      float64 `json:"netProfit"`
	FarmerShare    float64 `json:"farmerShare"`
	CompanyShare   float64 `json:"companyShare"`
	FeedCost       float64 `json:"feedCost"`
	MedicineCost   float64 `json:"medicineCost"`
	OtherExpenses  float64 `json:"otherExpenses"`
	TotalCost      float64 `json:"totalCost"`
	SalesRevenue   float64 `json:"salesRevenue"`
	EggRevenue     float64 `json:"eggRevenue"`
	BirdsSold      int     `json:"birdsSold"`
	AvgPricePerKg  float64 `json:"avgPricePerKg"`
	CostPerBird    float64 `json:"costPerBird"`
	RevenuePerBird float64 `json:"revenuePerBird"`
}

// FinancialSummary aggregates the batch ledgers. Sales totals are recomputed
// from their inputs rather than read from the stored entry. Feed cost counts
// purchases only, so TotalCost matches the production cost the ledger books.
func FinancialSummary(b models.Batch) Financials {
	feed := feedPurchases(b)
	medicine := medicineCost(b)
	other := otherExpenses(b)
	eggs := decimal.Zero
	for _, e := range b.EggEntries {
		eggs = eggs.Add(decimal.NewFromFloat(e.TotalAmount))
	}

	sales := decimal.Zero
	priceSum := decimal.Zero
	birdsSold := 0
	for _, e := range b.SalesEntries {
		sales = sales.Add(decimal.NewFromFloat(EntrySaleTotal(e)))
		priceSum = priceSum.Add(decimal.NewFromFloat(e.PricePerKg))
		birdsSold += e.Birds
	}

	gross := decimal.NewFromFloat(b.GrossAmount)
	production := decimal.NewFromFloat(b.ProductionCost)
	farmerShare := decimal.NewFromFloat(b.FarmerShare)

	f := Financials{
		GrossAmount:    b.GrossAmount,
		ProductionCost: b.ProductionCost,
		NetProfit:      gross.Sub(production).Round(2).InexactFloat64(),
		FarmerShare:    b.FarmerShare,
		CompanyShare:   gross.Sub(farmerShare).Round(2).InexactFloat64(),
		FeedCost:       feed.Round(2).InexactFloat64(),
		MedicineCost:   medicine.Round(2).InexactFloat64(),
		OtherExpenses:  other.Round(2).InexactFloat64(),
		TotalCost:      feed.Add(medicine).Add(other).Round(2).InexactFloat64(),
		SalesRevenue:   sales.Round(2).InexactFloat64(),
		EggRevenue:     eggs.Round(2).InexactFloat64(),
		BirdsSold:      birdsSold,
	}

	if n := len(b.SalesEntries); n > 0 {
		f.AvgPricePerKg = priceSum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	}
	if b.TotalBirds > 0 {
		f.CostPerBird = production.Div(decimal.NewFromInt(int64(b.TotalBirds))).Round(2).InexactFloat64()
	}
	if birdsSold > 0 {
		f.RevenuePerBird = gross.Div(decimal.NewFromInt(int64(birdsSold))).Round(2).InexactFloat64()
	}

	return f
}

// StandardsReport compares a batch against the configured targets. The
// variance fields are only meaningful when the matching figure is available.
type StandardsReport struct {
	StandardFCR                 float64 `json:"standardFcr"`
	FCRVariance                 float64 `json:"fcrVariance"`
	WithinStandardFCR           bool    `json:"withinStandardFcr"`
	LiveWeightKg                float64 `json:"liveWeightKg"`
	ProductionCostPerKg         float64 `json:"productionCostPerKg"`
	StandardProductionCostPerKg float64 `json:"standardProductionCostPerKg"`
	WithinStandardCost          bool    `json:"withinStandardCost"`
}

// LiveWeightKg is the weight of birds still on the farm at their latest
// sample plus every bird already sold at its sale weight.
func LiveWeightKg(b models.Batch) float64 {
	w := decimal.NewFromInt(int64(b.CurrentBirds)).Mul(decimal.NewFromFloat(LatestAvgWeight(b)))
	for _, s := range b.SalesEntries {
		w = w.Add(decimal.NewFromInt(int64(s.Birds)).Mul(decimal.NewFromFloat(s.AvgWeight)))
	}
	return w.Div(grams).Round(2).InexactFloat64()
}

// CompareStandards measures b against the standard FCR and production cost.
func (c *Calculator) CompareStandards(b models.Batch) StandardsReport {
	std := c.rules.Standards
	r := StandardsReport{
		StandardFCR:                 std.FCR,
		StandardProductionCostPerKg: std.ProductionCostPerKg,
		LiveWeightKg:                LiveWeightKg(b),
	}
	if fcr, ok := c.FCR(b); ok {
		r.FCRVariance = round2(fcr - std.FCR)
		r.WithinStandardFCR = fcr <= std.FCR
	}
	if r.LiveWeightKg > 0 {
		perKg := c.ProductionCost(b).Div(decimal.NewFromFloat(r.LiveWeightKg)).Round(2)
		r.ProductionCostPerKg = perKg.InexactFloat64()
		r.WithinStandardCost = r.ProductionCostPerKg <= std.ProductionCostPerKg
	}
	return r
}

// BatchMetrics bundles every derived figure for one batch.
type BatchMetrics struct {
	BatchID         string          `json:"batchId"`
	BatchCode       string          `json:"batchCode"`
	TotalBirds      int             `json:"totalBirds"`
	CurrentBirds    int             `json:"currentBirds"`
	TotalMortality  int             `json:"totalMortality"`
	MortalityRate   float64         `json:"mortalityRate"`
	FCR             float64         `json:"fcr"`
	FCRAvailable    bool            `json:"fcrAvailable"`
	FeedConsumedKg  float64         `json:"feedConsumedKg"`
	FeedPerBird     float64         `json:"feedPerBird"`
	AvgWeight       float64         `json:"avgWeight"`
	DailyWeightGain float64         `json:"dailyWeightGain"`
	Financials      Financials      `json:"financials"`
	Settlement      Settlement      `json:"settlement"`
	Standards       StandardsReport `json:"standards"`
}

// Summarize computes the full metrics report for b as of asOf. Completed
// batches are measured at their end date.
func (c *Calculator) Summarize(b models.Batch, asOf time.Time) BatchMetrics {
	if b.EndDate != nil {
		if end, err := models.ParseDate(*b.EndDate); err == nil {
			asOf = end
		}
	}

	fcr, ok := c.FCR(b)
	return BatchMetrics{
		BatchID:         b.ID,
		BatchCode:       b.BatchCode,
		TotalBirds:      b.TotalBirds,
		CurrentBirds:    b.CurrentBirds,
		TotalMortality:  TotalMortality(b.DailyEntries),
		MortalityRate:   MortalityRate(b),
		FCR:             fcr,
		FCRAvailable:    ok,
		FeedConsumedKg:  c.FeedConsumedKg(b.DailyEntries),
		FeedPerBird:     c.FeedPerBird(b),
		AvgWeight:       LatestAvgWeight(b),
		DailyWeightGain: DailyWeightGain(b, asOf),
		Financials:      FinancialSummary(b),
		Settlement:      c.Settle(b),
		Standards:       c.CompareStandards(b),
	}
}
