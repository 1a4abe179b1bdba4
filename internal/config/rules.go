package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Rules collects the business constants used by the metrics calculator and
// listings. Each one can be overridden from configs/rules.yaml or a RULES_*
// environment variable.
type Rules struct {
	// ShedEfficiency discounts raw floor area (length x width) to usable bird capacity.
	ShedEfficiency        float64 `mapstructure:"shed_efficiency"`
	DefaultPricePerKg     float64 `mapstructure:"default_price_per_kg"`
	FeedBagWeightKg       float64 `mapstructure:"feed_bag_weight_kg"`
	ChickWeightGrams      float64 `mapstructure:"chick_weight_grams"`
	MortalityAlertPercent float64 `mapstructure:"mortality_alert_percent"`
	BatchPageSize         int     `mapstructure:"batch_page_size"`
	ActivityPageSize      int     `mapstructure:"activity_page_size"`

	Farmer    FarmerRates    `mapstructure:"farmer"`
	Standards Standards      `mapstructure:"standards"`
	Inventory InventoryRules `mapstructure:"inventory"`
}

// FarmerRates settle the grower's share of a batch. The share is a percentage
// of gross sales plus fixed amounts, less a per-bird penalty for losses above
// the allowed mortality.
type FarmerRates struct {
	SharePercent            float64 `mapstructure:"share_percent"`
	GrowerAmount            float64 `mapstructure:"grower_amount"`
	ManagementIncentive     float64 `mapstructure:"management_incentive"`
	AllowedMortalityPercent float64 `mapstructure:"allowed_mortality_percent"`
	PenaltyPerBird          float64 `mapstructure:"penalty_per_bird"`
	HighMortalityPercent    float64 `mapstructure:"high_mortality_percent"`
	HighPenaltyPerBird      float64 `mapstructure:"high_penalty_per_bird"`
}

// Standards are the targets batch performance is compared against.
type Standards struct {
	FCR                 float64 `mapstructure:"fcr"`
	ProductionCostPerKg float64 `mapstructure:"production_cost_per_kg"`
}

// InventoryRules set the levels under which stock is reported as low.
type InventoryRules struct {
	LowFeedBags         float64 `mapstructure:"low_feed_bags"`
	LowMedicineQuantity float64 `mapstructure:"low_medicine_quantity"`
}

// DefaultRules returns the built-in constants.
func DefaultRules() Rules {
	return Rules{
		ShedEfficiency:        0.989,
		DefaultPricePerKg:     120,
		FeedBagWeightKg:       50,
		ChickWeightGrams:      40,
		MortalityAlertPercent: 5,
		BatchPageSize:         9,
		ActivityPageSize:      10,
		Farmer: FarmerRates{
			SharePercent:            75,
			GrowerAmount:            5000,
			ManagementIncentive:     2500,
			AllowedMortalityPercent: 3,
			PenaltyPerBird:          250,
			HighMortalityPercent:    10,
			HighPenaltyPerBird:      300,
		},
		Standards: Standards{FCR: 1.5, ProductionCostPerKg: 170},
		Inventory: InventoryRules{LowFeedBags: 20, LowMedicineQuantity: 5},
	}
}

// LoadRules reads the optional rules file at path and applies RULES_*
// environment overrides on top of DefaultRules. A missing file is not an error.
func LoadRules(path string) (Rules, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRules()
	v.SetDefault("shed_efficiency", defaults.ShedEfficiency)
	v.SetDefault("default_price_per_kg", defaults.DefaultPricePerKg)
	v.SetDefault("feed_bag_weight_kg", defaults.FeedBagWeightKg)
	v.SetDefault("chick_weight_grams", defaults.ChickWeightGrams)
	v.SetDefault("mortality_alert_percent", defaults.MortalityAlertPercent)
	v.SetDefault("batch_page_size", defaults.BatchPageSize)
	v.SetDefault("activity_page_size", defaults.ActivityPageSize)
	v.SetDefault("farmer.share_percent", defaults.Farmer.SharePercent)
	v.SetDefault("farmer.grower_amount", defaults.Farmer.GrowerAmount)
	v.SetDefault("farmer.management_incentive", defaults.Farmer.ManagementIncentive)
	v.SetDefault("farmer.allowed_mortality_percent", defaults.Farmer.AllowedMortalityPercent)
	v.SetDefault("farmer.penalty_per_bird", defaults.Farmer.PenaltyPerBird)
	v.SetDefault("farmer.high_mortality_percent", defaults.Farmer.HighMortalityPercent)
	v.SetDefault("farmer.high_penalty_per_bird", defaults.Farmer.HighPenaltyPerBird)
	v.SetDefault("standards.fcr", defaults.Standards.FCR)
	v.SetDefault("standards.production_cost_per_kg", defaults.Standards.ProductionCostPerKg)
	v.SetDefault("inventory.low_feed_bags", defaults.Inventory.LowFeedBags)
	v.SetDefault("inventory.low_medicine_quantity", defaults.Inventory.LowMedicineQuantity)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Rules{}, fmt.Errorf("read rules file %s: %w", path, err)
		}
	}

	var rules Rules
	if err := v.Unmarshal(&rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// Validate rejects rule sets that would make the calculator meaningless.
func (r Rules) Validate() error {
	switch {
	case r.ShedEfficiency <= 0 || r.ShedEfficiency > 1:
		return fmt.Errorf("shed_efficiency must be in (0, 1], got %v", r.ShedEfficiency)
	case r.DefaultPricePerKg < 0:
		return errors.New("default_price_per_kg must not be negative")
	case r.FeedBagWeightKg <= 0:
		return errors.New("feed_bag_weight_kg must be positive")
	case r.ChickWeightGrams < 0:
		return errors.New("chick_weight_grams must not be negative")
	case r.MortalityAlertPercent <= 0:
		return errors.New("mortality_alert_percent must be positive")
	case r.BatchPageSize <= 0 || r.ActivityPageSize <= 0:
		return errors.New("page sizes must be positive")
	case r.Farmer.SharePercent < 0 || r.Farmer.SharePercent > 100:
		return fmt.Errorf("farmer.share_percent must be in [0, 100], got %v", r.Farmer.SharePercent)
	case r.Farmer.HighMortalityPercent < r.Farmer.AllowedMortalityPercent:
		return errors.New("farmer.high_mortality_percent must not be below farmer.allowed_mortality_percent")
	case r.Farmer.GrowerAmount < 0 || r.Farmer.ManagementIncentive < 0 ||
		r.Farmer.PenaltyPerBird < 0 || r.Farmer.HighPenaltyPerBird < 0:
		return errors.New("farmer amounts must not be negative")
	case r.Standards.FCR <= 0 || r.Standards.ProductionCostPerKg <= 0:
		return errors.New("standards must be positive")
	case r.Inventory.LowFeedBags < 0 || r.Inventory.LowMedicineQuantity < 0:
		return errors.New("inventory thresholds must not be negative")
	}
	return nil
}
