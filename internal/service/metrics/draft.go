package metrics

import "github.com/shopspring/decimal"

// SaleDraft is a sales entry being filled in. The total is derived on every
// read so a field change can never leave a stale amount behind.
type SaleDraft struct {
	Birds      int     `json:"birds"`
	AvgWeight  float64 `json:"avgWeight"`
	PricePerKg float64 `json:"pricePerKg"`
}

// NewSaleDraft starts a draft at the default price and the batch's average weight.
func NewSaleDraft(defaultPricePerKg, avgWeightGrams float64) *SaleDraft {
	return &SaleDraft{AvgWeight: avgWeightGrams, PricePerKg: defaultPricePerKg}
}

func (d *SaleDraft) SetBirds(n int) *SaleDraft {
	d.Birds = n
	return d
}

func (d *SaleDraft) SetAvgWeight(grams float64) *SaleDraft {
	d.AvgWeight = grams
	return d
}

func (d *SaleDraft) SetPricePerKg(price float64) *SaleDraft {
	d.PricePerKg = price
	return d
}

// TotalWeightKg is the live weight on the truck.
func (d *SaleDraft) TotalWeightKg() float64 {
	if d.Birds <= 0 || d.AvgWeight <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(d.Birds)).
		Mul(decimal.NewFromFloat(d.AvgWeight)).
		Div(grams).
		Round(2).
		InexactFloat64()
}

// Total is the amount due for the draft.
func (d *SaleDraft) Total() float64 {
	return SaleTotal(d.Birds, d.AvgWeight, d.PricePerKg)
}
