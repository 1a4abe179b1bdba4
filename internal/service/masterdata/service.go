// Package masterdata owns the reference tables the ledger prices and settles
// against: bird types, weight-banded sale prices and the configured farmer
// rates and performance standards.
package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// ErrNotFound indicates the bird type or price band does not exist.
var ErrNotFound = errors.New("master data not found")

// ErrInvalidInput indicates a payload failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Price sources reported by PriceFor.
const (
	SourceBand     = "band"
	SourceBirdType = "bird-type"
	SourceDefault  = "default"
)

// Repository is the storage master data needs.
type Repository interface {
	ListBirdTypes(ctx context.Context) ([]models.BirdType, error)
	GetBirdType(ctx context.Context, id string) (models.BirdType, error)
	CreateBirdType(ctx context.Context, t models.BirdType) error
	UpdateBirdType(ctx context.Context, t models.BirdType) error

	ListPriceBands(ctx context.Context) ([]models.PriceBand, error)
	GetPriceBand(ctx context.Context, id string) (models.PriceBand, error)
	CreatePriceBand(ctx context.Context, p models.PriceBand) error
	UpdatePriceBand(ctx context.Context, p models.PriceBand) error
}

// Quote is the resolved sale price for a bird type and weight.
type Quote struct {
	ChickType   models.ChickType `json:"chickType"`
	WeightGrams float64          `json:"weightGrams"`
	Date        string           `json:"date"`
	PricePerKg  float64          `json:"pricePerKg"`
	Source      string           `json:"source"`
	BandID      string           `json:"bandId,omitempty"`
}

// Rates is the read-only view of the configured settlement constants.
type Rates struct {
	Farmer            config.FarmerRates `json:"farmer"`
	Standards         config.Standards   `json:"standards"`
	DefaultPricePerKg float64            `json:"defaultPricePerKg"`
}

// Service implements the master data operations.
type Service struct {
	repo   Repository
	rules  config.Rules
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires master data against the configured rules.
func NewService(repo Repository, rules config.Rules, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		rules:  rules,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Rates returns the farmer rates and standards in force.
func (s *Service) Rates() Rates {
	return Rates{
		Farmer:            s.rules.Farmer,
		Standards:         s.rules.Standards,
		DefaultPricePerKg: s.rules.DefaultPricePerKg,
	}
}

// ListBirdTypes returns bird types, optionally only the active ones.
func (s *Service) ListBirdTypes(ctx context.Context, activeOnly bool) ([]models.BirdType, error) {
	all, err := s.repo.ListBirdTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bird types: %w", err)
	}
	out := make([]models.BirdType, 0, len(all))
	for _, t := range all {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateBirdType registers a new bird type. New types are active.
func (s *Service) CreateBirdType(ctx context.Context, in models.BirdType) (models.BirdType, error) {
	t := in
	t.Name = models.ChickType(strings.TrimSpace(string(t.Name)))
	t.ID = s.newID()
	t.IsActive = true
	if err := t.Validate(); err != nil {
		return models.BirdType{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.CreateBirdType(ctx, t); err != nil {
		return models.BirdType{}, mapRepoError("bird type", string(t.Name), err)
	}
	s.logger.Info("bird type created", zap.String("name", string(t.Name)), zap.Float64("default_price", t.DefaultPrice))
	return t, nil
}

// UpdateBirdType replaces the editable fields of a bird type.
func (s *Service) UpdateBirdType(ctx context.Context, id string, in models.BirdType) (models.BirdType, error) {
	if _, err := s.repo.GetBirdType(ctx, id); err != nil {
		return models.BirdType{}, mapRepoError("bird type", id, err)
	}
	t := in
	t.ID = id
	t.Name = models.ChickType(strings.TrimSpace(string(t.Name)))
	if err := t.Validate(); err != nil {
		return models.BirdType{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.UpdateBirdType(ctx, t); err != nil {
		return models.BirdType{}, mapRepoError("bird type", id, err)
	}
	return t, nil
}

// ListPriceBands returns price bands, optionally for one bird type.
func (s *Service) ListPriceBands(ctx context.Context, birdTypeID string) ([]models.PriceBand, error) {
	all, err := s.repo.ListPriceBands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price bands: %w", err)
	}
	out := make([]models.PriceBand, 0, len(all))
	for _, p := range all {
		if birdTypeID != "" && p.BirdTypeID != birdTypeID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CreatePriceBand adds a price band for an existing bird type. The band is
// effective from today when no date is given.
func (s *Service) CreatePriceBand(ctx context.Context, in models.PriceBand) (models.PriceBand, error) {
	p := in
	p.ID = s.newID()
	p.IsActive = true
	if p.EffectiveFrom == "" {
		p.EffectiveFrom = s.now().Format(models.DateLayout)
	}
	if err := s.checkBand(ctx, p); err != nil {
		return models.PriceBand{}, err
	}
	if err := s.repo.CreatePriceBand(ctx, p); err != nil {
		return models.PriceBand{}, mapRepoError("price band", p.ID, err)
	}
	s.logger.Info("price band created",
		zap.String("bird_type", p.BirdTypeID),
		zap.Float64("min_weight", p.MinWeightGrams),
		zap.Float64("max_weight", p.MaxWeightGrams),
		zap.Float64("price_per_kg", p.PricePerKg),
	)
	return p, nil
}

// UpdatePriceBand replaces a price band, typically to close it with an
// effective-to date or deactivate it.
func (s *Service) UpdatePriceBand(ctx context.Context, id string, in models.PriceBand) (models.PriceBand, error) {
	if _, err := s.repo.GetPriceBand(ctx, id); err != nil {
		return models.PriceBand{}, mapRepoError("price band", id, err)
	}
	p := in
	p.ID = id
	if err := s.checkBand(ctx, p); err != nil {
		return models.PriceBand{}, err
	}
	if err := s.repo.UpdatePriceBand(ctx, p); err != nil {
		return models.PriceBand{}, mapRepoError("price band", id, err)
	}
	return p, nil
}

func (s *Service) checkBand(ctx context.Context, p models.PriceBand) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.repo.GetBirdType(ctx, p.BirdTypeID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: unknown bird type %s", ErrInvalidInput, p.BirdTypeID)
		}
		return fmt.Errorf("load bird type %s: %w", p.BirdTypeID, err)
	}
	return nil
}

// PriceFor resolves the sale price for a bird of chick type and weight sold
// on the given day (today when empty). The active band covering the weight
// and date wins, the most recently effective one first. Without a band the
// bird type's default price applies, and without that the configured
// default price per kg.
func (s *Service) PriceFor(ctx context.Context, chick models.ChickType, weightGrams float64, on string) (Quote, error) {
	if on == "" {
		on = s.now().Format(models.DateLayout)
	}
	if _, err := models.ParseDate(on); err != nil {
		return Quote{}, fmt.Errorf("%w: date %q: %v", ErrInvalidInput, on, err)
	}
	q := Quote{ChickType: chick, WeightGrams: weightGrams, Date: on, PricePerKg: s.rules.DefaultPricePerKg, Source: SourceDefault}

	types, err := s.repo.ListBirdTypes(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("list bird types: %w", err)
	}
	var birdType *models.BirdType
	for i := range types {
		if strings.EqualFold(string(types[i].Name), string(chick)) {
			birdType = &types[i]
			break
		}
	}
	if birdType == nil {
		return q, nil
	}

	bands, err := s.ListPriceBands(ctx, birdType.ID)
	if err != nil {
		return Quote{}, err
	}
	var best *models.PriceBand
	for i := range bands {
		if !bands[i].Covers(weightGrams, on) {
			continue
		}
		if best == nil || bands[i].EffectiveFrom > best.EffectiveFrom {
			best = &bands[i]
		}
	}
	switch {
	case best != nil:
		q.PricePerKg, q.Source, q.BandID = best.PricePerKg, SourceBand, best.ID
	case birdType.IsActive && birdType.DefaultPrice > 0:
		q.PricePerKg, q.Source = birdType.DefaultPrice, SourceBirdType
	}
	return q, nil
}

// PricePerKg is PriceFor reduced to the price, for callers that only need it.
func (s *Service) PricePerKg(ctx context.Context, chick models.ChickType, weightGrams float64, on string) (float64, error) {
	q, err := s.PriceFor(ctx, chick, weightGrams, on)
	if err != nil {
		return 0, err
	}
	return q.PricePerKg, nil
}

func mapRepoError(kind, id string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	case errors.Is(err, models.ErrDuplicate):
		return fmt.Errorf("%w: %s %s already exists", ErrInvalidInput, kind, id)
	}
	return err
}
