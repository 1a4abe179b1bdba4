package models

import "fmt"

// BirdType is a breed the company places with farmers, with the default
// sale price used when no weight band matches.
type BirdType struct {
	ID             string    `bson:"_id" json:"id"`
	Name           ChickType `bson:"name" json:"name"`
	Description    string    `bson:"description" json:"description"`
	DefaultPrice   float64   `bson:"default_price" json:"defaultPrice"`
	MinWeightGrams float64   `bson:"min_weight_grams" json:"minWeightGrams"`
	MaxWeightGrams float64   `bson:"max_weight_grams" json:"maxWeightGrams"`
	IsActive       bool      `bson:"is_active" json:"isActive"`
}

// Validate checks the bird type's price and weight range.
func (t BirdType) Validate() error {
	switch {
	case t.Name == "":
		return fmt.Errorf("bird type name is required")
	case t.DefaultPrice < 0:
		return fmt.Errorf("default price must not be negative")
	case t.MinWeightGrams < 0 || t.MaxWeightGrams < 0:
		return fmt.Errorf("weights must not be negative")
	case t.MaxWeightGrams > 0 && t.MaxWeightGrams < t.MinWeightGrams:
		return fmt.Errorf("max weight %v is below min weight %v", t.MaxWeightGrams, t.MinWeightGrams)
	}
	return nil
}

// PriceBand is the sale price per kg for one bird type within an inclusive
// live weight range. EffectiveTo is open ended when empty.
type PriceBand struct {
	ID             string  `bson:"_id" json:"id"`
	BirdTypeID     string  `bson:"bird_type_id" json:"birdTypeId"`
	Name           string  `bson:"name" json:"name"`
	MinWeightGrams float64 `bson:"min_weight_grams" json:"minWeightGrams"`
	MaxWeightGrams float64 `bson:"max_weight_grams" json:"maxWeightGrams"`
	PricePerKg     float64 `bson:"price_per_kg" json:"pricePerKg"`
	EffectiveFrom  string  `bson:"effective_from" json:"effectiveFrom"`
	EffectiveTo    string  `bson:"effective_to,omitempty" json:"effectiveTo,omitempty"`
	IsActive       bool    `bson:"is_active" json:"isActive"`
}

// Validate checks the band's range, price and effective dates.
func (p PriceBand) Validate() error {
	switch {
	case p.BirdTypeID == "":
		return fmt.Errorf("bird type is required")
	case p.PricePerKg <= 0:
		return fmt.Errorf("price per kg must be positive")
	case p.MinWeightGrams < 0 || p.MaxWeightGrams <= 0:
		return fmt.Errorf("weight range must be positive")
	case p.MaxWeightGrams < p.MinWeightGrams:
		return fmt.Errorf("max weight %v is below min weight %v", p.MaxWeightGrams, p.MinWeightGrams)
	}
	if _, err := ParseDate(p.EffectiveFrom); err != nil {
		return fmt.Errorf("effective from: %w", err)
	}
	if p.EffectiveTo != "" {
		if _, err := ParseDate(p.EffectiveTo); err != nil {
			return fmt.Errorf("effective to: %w", err)
		}
		if p.EffectiveTo < p.EffectiveFrom {
			return fmt.Errorf("effective to %s is before effective from %s", p.EffectiveTo, p.EffectiveFrom)
		}
	}
	return nil
}

// Covers reports whether the band applies to a bird of weightGrams sold on
// the calendar day on.
func (p PriceBand) Covers(weightGrams float64, on string) bool {
	if !p.IsActive || weightGrams < p.MinWeightGrams || weightGrams > p.MaxWeightGrams {
		return false
	}
	if on < p.EffectiveFrom {
		return false
	}
	return p.EffectiveTo == "" || on <= p.EffectiveTo
}
