// Package metrics derives the batch and financial figures shown in reports
// from a batch's raw entry ledgers. Every function is pure: no I/O, no
// clocks unless one is passed in, and no division that can yield NaN or Inf.
package metrics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

var grams = decimal.NewFromInt(1000)

// Calculator applies the configured business rules to batch data.
type Calculator struct {
	rules config.Rules
}

// NewCalculator builds a calculator bound to rules.
func NewCalculator(rules config.Rules) *Calculator {
	return &Calculator{rules: rules}
}

// Rules exposes the constants the calculator was built with.
func (c *Calculator) Rules() config.Rules {
	return c.rules
}

// SaleTotal returns birds x (avgWeightGrams / 1000) x pricePerKg rounded to
// two decimals. It is recomputed on every call; callers never cache it.
func SaleTotal(birds int, avgWeightGrams, pricePerKg float64) float64 {
	if birds <= 0 || avgWeightGrams <= 0 || pricePerKg <= 0 {
		return 0
	}
	total := decimal.NewFromInt(int64(birds)).
		Mul(decimal.NewFromFloat(avgWeightGrams).Div(grams)).
		Mul(decimal.NewFromFloat(pricePerKg))
	return total.Round(2).InexactFloat64()
}

// EntrySaleTotal recomputes the total of a sales entry from its inputs.
func EntrySaleTotal(e models.SalesEntry) float64 {
	return SaleTotal(e.Birds, e.AvgWeight, e.PricePerKg)
}

// ShedCapacity returns floor(length x width x efficiency); non-positive
// dimensions yield zero.
func ShedCapacity(length, width, efficiency float64) int {
	if length <= 0 || width <= 0 || efficiency <= 0 {
		return 0
	}
	area := decimal.NewFromFloat(length).Mul(decimal.NewFromFloat(width))
	return int(area.Mul(decimal.NewFromFloat(efficiency)).Floor().IntPart())
}

// ShedCapacity applies the configured shed efficiency.
func (c *Calculator) ShedCapacity(length, width float64) int {
	return ShedCapacity(length, width, c.rules.ShedEfficiency)
}

// TotalMortality sums every loss (deaths, weak and leg-weak culls) recorded
// in the daily log.
func TotalMortality(entries []models.DailyEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Losses()
	}
	return total
}

// MortalityRate is total mortality across daily entries divided by total
// birds, as a percentage rounded to two decimals. Zero total birds yields 0.
func MortalityRate(b models.Batch) float64 {
	if b.TotalBirds <= 0 {
		return 0
	}
	rate := float64(TotalMortality(b.DailyEntries)) / float64(b.TotalBirds) * 100
	return round2(rate)
}

// FeedConsumedKg sums feed consumed across the daily log. Entries that only
// carry a bag count are converted with the configured bag weight.
func (c *Calculator) FeedConsumedKg(entries []models.DailyEntry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		kg := e.FeedUsed
		if kg <= 0 && e.FeedBags > 0 {
			kg = e.FeedBags * c.rules.FeedBagWeightKg
		}
		total = total.Add(decimal.NewFromFloat(kg))
	}
	return total.InexactFloat64()
}

// LatestAvgWeight returns the most recent average weight sample in grams,
// falling back to the batch's recorded average.
func LatestAvgWeight(b models.Batch) float64 {
	var latest float64
	var latestDate string
	for _, e := range b.DailyEntries {
		if e.AvgWeight <= 0 {
			continue
		}
		if latestDate == "" || e.Date >= latestDate {
			latest = e.AvgWeight
			latestDate = e.Date
		}
	}
	if latest > 0 {
		return latest
	}
	return b.BirdWeightAvg
}

// WeightGainKg is the live weight produced by the batch: birds on the farm
// at their latest weight plus birds already sold at their sale weight, minus
// the placement weight of every chick.
func (c *Calculator) WeightGainKg(b models.Batch) float64 {
	produced := decimal.NewFromInt(int64(b.CurrentBirds)).Mul(decimal.NewFromFloat(LatestAvgWeight(b)))
	for _, s := range b.SalesEntries {
		produced = produced.Add(decimal.NewFromInt(int64(s.Birds)).Mul(decimal.NewFromFloat(s.AvgWeight)))
	}
	placed := decimal.NewFromInt(int64(b.TotalBirds)).Mul(decimal.NewFromFloat(c.rules.ChickWeightGrams))
	return produced.Sub(placed).Div(grams).InexactFloat64()
}

// FCR is feed consumed divided by live weight gained. ok is false when there
// is no gain to divide by and the ratio is undefined.
func (c *Calculator) FCR(b models.Batch) (fcr float64, ok bool) {
	gain := c.WeightGainKg(b)
	if gain <= 0 {
		return 0, false
	}
	feed := c.FeedConsumedKg(b.DailyEntries)
	if feed <= 0 {
		return 0, false
	}
	return round2(feed / gain), true
}

// FeedPerBird is the cumulative feed (bags converted to kg) per live bird.
func (c *Calculator) FeedPerBird(b models.Batch) float64 {
	if b.CurrentBirds <= 0 {
		return 0
	}
	return round2(b.FeedUsed * c.rules.FeedBagWeightKg / float64(b.CurrentBirds))
}

// StandardFeedPerBird is the feed issued per bird for one day's bag count.
func (c *Calculator) StandardFeedPerBird(feedBags float64, currentBirds int) float64 {
	birds := currentBirds
	if birds <= 0 {
		birds = 1
	}
	return math.Round(feedBags*c.rules.FeedBagWeightKg/float64(birds)*1000) / 1000
}

// DailyWeightGain is the average weight in grams divided by the days the
// batch has been running (at least one) as of asOf.
func DailyWeightGain(b models.Batch, asOf time.Time) float64 {
	start, err := models.ParseDate(b.StartDate)
	if err != nil {
		return 0
	}
	days := int(asOf.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return math.Round(LatestAvgWeight(b)/float64(days)*10) / 10
}

// BirdAge returns the age in days on the given date, never negative.
func BirdAge(hatchingDate string, on time.Time) int {
	hatched, err := models.ParseDate(hatchingDate)
	if err != nil {
		return 0
	}
	days := int(on.Sub(hatched).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NextWeighingDay returns the next weekly weighing day for a bird age.
func NextWeighingDay(age int) int {
	if age <= 0 {
		return 0
	}
	return int(math.Ceil(float64(age)/7)) * 7
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
