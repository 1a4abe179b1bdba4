package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// Settlement breaks down the grower's share of a batch.
type Settlement struct {
	BaseShare        float64 `json:"baseShare"`
	GrowerAmount     float64 `json:"growerAmount"`
	Incentive        float64 `json:"incentive"`
	PenalisedBirds   int     `json:"penalisedBirds"`
	MortalityPenalty float64 `json:"mortalityPenalty"`
	FarmerShare      float64 `json:"farmerShare"`
}

// Settle computes the farmer share of b under the configured farmer rates.
// Nothing is owed before the first sale. Losses above the allowed mortality
// are charged per bird, at the higher rate past the high mortality band, and
// the management incentive is only paid while mortality stays allowed.
func (c *Calculator) Settle(b models.Batch) Settlement {
	gross := c.GrossAmount(b)
	if gross.IsZero() {
		return Settlement{}
	}
	rates := c.rules.Farmer

	base := gross.Mul(decimal.NewFromFloat(rates.SharePercent)).Div(hundred)
	s := Settlement{
		BaseShare:    base.Round(2).InexactFloat64(),
		GrowerAmount: rates.GrowerAmount,
	}

	losses := TotalMortality(b.DailyEntries)
	allowed := birdsAt(b.TotalBirds, rates.AllowedMortalityPercent)
	high := birdsAt(b.TotalBirds, rates.HighMortalityPercent)

	penalty := decimal.Zero
	if losses > allowed {
		banded := min(losses, high) - allowed
		penalty = penalty.Add(decimal.NewFromInt(int64(banded)).Mul(decimal.NewFromFloat(rates.PenaltyPerBird)))
		s.PenalisedBirds = losses - allowed
	}
	if losses > high {
		penalty = penalty.Add(decimal.NewFromInt(int64(losses - high)).Mul(decimal.NewFromFloat(rates.HighPenaltyPerBird)))
	}
	if losses <= allowed {
		s.Incentive = rates.ManagementIncentive
	}
	s.MortalityPenalty = penalty.Round(2).InexactFloat64()

	share := base.
		Add(decimal.NewFromFloat(s.GrowerAmount)).
		Add(decimal.NewFromFloat(s.Incentive)).
		Sub(penalty)
	if share.IsNegative() {
		share = decimal.Zero
	}
	s.FarmerShare = share.Round(2).InexactFloat64()
	return s
}

// birdsAt is the whole number of birds that percent of total represents.
func birdsAt(total int, percent float64) int {
	if total <= 0 || percent <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(total)).Mul(decimal.NewFromFloat(percent)).Div(hundred).Floor().IntPart())
}

// GrossAmount is every sale recomputed from its inputs plus egg sales.
func (c *Calculator) GrossAmount(b models.Batch) decimal.Decimal {
	gross := decimal.Zero
	for _, e := range b.SalesEntries {
		gross = gross.Add(decimal.NewFromFloat(EntrySaleTotal(e)))
	}
	for _, e := range b.EggEntries {
		gross = gross.Add(decimal.NewFromFloat(e.TotalAmount))
	}
	return gross
}

// ProductionCost is feed purchases plus medicine and other expenses. Feed
// moved between batches is not a cost to the company.
func (c *Calculator) ProductionCost(b models.Batch) decimal.Decimal {
	return feedPurchases(b).Add(medicineCost(b)).Add(otherExpenses(b))
}

func feedPurchases(b models.Batch) decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.FeedEntries {
		if e.EntryType == models.FeedPurchase {
			total = total.Add(decimal.NewFromFloat(e.TotalAmount))
		}
	}
	return total
}

func medicineCost(b models.Batch) decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.MedicineEntries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

func otherExpenses(b models.Batch) decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.ExpenseEntries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

// Refresh rewrites every stored figure of b that is derived from its entry
// logs, so a stored batch always agrees with Summarize. Bird count and feed
// stock are running balances and are left alone.
func (c *Calculator) Refresh(b *models.Batch) {
	b.TotalMortality = TotalMortality(b.DailyEntries)
	b.MortalityRate = MortalityRate(*b)
	b.BirdWeightAvg = LatestAvgWeight(*b)
	b.FCR, _ = c.FCR(*b)
	b.GrossAmount = c.GrossAmount(*b).Round(2).InexactFloat64()
	b.ProductionCost = c.ProductionCost(*b).Round(2).InexactFloat64()
	b.FarmerShare = c.Settle(*b).FarmerShare
}
