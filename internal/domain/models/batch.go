package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout used by every entry date.
const DateLayout = "2006-01-02"

// BatchStatus enumerates the lifecycle states of a batch.
type BatchStatus string

const (
	BatchActive    BatchStatus = "active"
	BatchCompleted BatchStatus = "completed"
)

// ChickType enumerates the breeds raised by contracted farmers.
type ChickType string

const (
	ChickTNAseel        ChickType = "TN Aseel"
	ChickIndbroAseel    ChickType = "Indbro Aseel"
	ChickColorBroiler   ChickType = "Color Broiler"
	ChickBroiler        ChickType = "Broiler"
	ChickBrownLayered   ChickType = "Brown Layered"
	ChickRainbowRoaster ChickType = "Rainbow Roaster"
	ChickSonali         ChickType = "Sonali"
)

// FeedType enumerates the feed products issued to batches.
type FeedType string

const (
	FeedDesiStarter     FeedType = "Desi Starter"
	FeedDesiGrower      FeedType = "Desi Grower"
	FeedDesiFinisher    FeedType = "Desi Finisher"
	FeedDesiFreeStarter FeedType = "Desi Free Starter"
)

// Batch is a cohort of birds raised together under one farmer and shed.
type Batch struct {
	ID             string      `bson:"_id" json:"id"`
	BatchCode      string      `bson:"batch_code" json:"batchCode"`
	FarmName       string      `bson:"farm_name" json:"farmName"`
	FarmerID       string      `bson:"farmer_id" json:"farmerId"`
	FarmerName     string      `bson:"farmer_name" json:"farmerName"`
	ShedID         string      `bson:"shed_id,omitempty" json:"shedId,omitempty"`
	ChickType      ChickType   `bson:"chick_type" json:"chickType"`
	HatchingDate   string      `bson:"hatching_date" json:"hatchingDate"`
	StartDate      string      `bson:"start_date" json:"startDate"`
	EndDate        *string     `bson:"end_date,omitempty" json:"endDate"`
	TotalBirds     int         `bson:"total_birds" json:"totalBirds"`
	CurrentBirds   int         `bson:"current_birds" json:"currentBirds"`
	FeedStock      float64     `bson:"feed_stock" json:"feedStock"`
	FeedUsed       float64     `bson:"feed_used" json:"feedUsed"`
	MortalityRate  float64     `bson:"mortality_rate" json:"mortalityRate"`
	WeakBirds      int         `bson:"weak_birds" json:"weakBirds"`
	LegWeakBirds   int         `bson:"leg_weak_birds" json:"legWeakBirds"`
	TotalMortality int         `bson:"total_mortality" json:"totalMortality"`
	BirdWeightAvg  float64     `bson:"bird_weight_avg" json:"birdWeightAvg"`
	FCR            float64     `bson:"fcr" json:"fcr"`
	ProductionCost float64     `bson:"production_cost" json:"productionCost"`
	GrossAmount    float64     `bson:"gross_amount" json:"grossAmount"`
	FarmerShare    float64     `bson:"farmer_share" json:"farmerShare"`
	Status         BatchStatus `bson:"status" json:"status"`
	Supervisor     string      `bson:"supervisor" json:"supervisor"`

	DailyEntries    []DailyEntry    `bson:"daily_entries" json:"dailyEntries"`
	SalesEntries    []SalesEntry    `bson:"sales_entries" json:"salesEntries"`
	FeedEntries     []FeedEntry     `bson:"feed_entries" json:"feedEntries"`
	MedicineEntries []MedicineEntry `bson:"medicine_entries" json:"medicineEntries"`
	EggEntries      []EggEntry      `bson:"egg_entries" json:"eggEntries"`
	ExpenseEntries  []ExpenseEntry  `bson:"expense_entries" json:"expenseEntries"`
}

// Validate checks the structural invariants of a batch.
func (b Batch) Validate() error {
	if b.FarmerID == "" {
		return fmt.Errorf("farmer id is required")
	}
	if b.TotalBirds < 0 || b.CurrentBirds < 0 {
		return fmt.Errorf("bird counts must not be negative")
	}
	if b.CurrentBirds > b.TotalBirds {
		return fmt.Errorf("current birds %d exceed total birds %d", b.CurrentBirds, b.TotalBirds)
	}
	if _, err := ParseDate(b.StartDate); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if b.HatchingDate != "" {
		if _, err := ParseDate(b.HatchingDate); err != nil {
			return fmt.Errorf("hatching date: %w", err)
		}
	}
	switch b.Status {
	case BatchActive, BatchCompleted:
	default:
		return fmt.Errorf("unknown batch status %q", b.Status)
	}
	return nil
}

// IsActive reports whether the batch still accepts entries.
func (b Batch) IsActive() bool {
	return b.Status == BatchActive
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return time.Parse(DateLayout, value)
}
