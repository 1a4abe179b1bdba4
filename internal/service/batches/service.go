package batches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// ErrNotFound indicates the batch does not exist.
var ErrNotFound = errors.New("batch not found")

// ErrInvalidEntry indicates a batch or entry payload failed validation.
var ErrInvalidEntry = errors.New("invalid entry")

// ErrBatchCompleted indicates the batch no longer accepts changes.
var ErrBatchCompleted = errors.New("batch is completed")

// ErrInsufficientBirds indicates an entry removes more birds than the batch holds.
var ErrInsufficientBirds = errors.New("not enough birds in batch")

// Repository is the storage the ledger needs.
type Repository interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	GetBatch(ctx context.Context, id string) (models.Batch, error)
	CreateBatch(ctx context.Context, b models.Batch) error
	UpdateBatch(ctx context.Context, id string, fn func(*models.Batch) error) (models.Batch, error)
}

// FarmerLookup resolves the farmer a new batch is placed with.
type FarmerLookup interface {
	GetFarmer(ctx context.Context, id string) (models.Farmer, error)
}

// PriceList resolves the default sale price for a bird type and weight on a
// calendar day.
type PriceList interface {
	PricePerKg(ctx context.Context, chick models.ChickType, weightGrams float64, on string) (float64, error)
}

// DailyObserver is notified after a daily entry has been stored.
type DailyObserver interface {
	DailyEntryRecorded(ctx context.Context, b models.Batch, entry models.DailyEntry)
}

var batchFields = filter.Fields[models.Batch]{
	Text: func(b models.Batch) []string {
		return []string{b.BatchCode, b.FarmName, b.FarmerName, b.Supervisor}
	},
	ID:     func(b models.Batch) string { return b.FarmerID },
	Date:   func(b models.Batch) string { return b.StartDate },
	Status: func(b models.Batch) string { return string(b.Status) },
	Active: models.Batch.IsActive,
}

// Service is the batch ledger: it owns every write to a batch and keeps the
// derived figures in step with the entry logs.
type Service struct {
	repo      Repository
	farmers   FarmerLookup
	calc      *metrics.Calculator
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	createMu  sync.Mutex
	observers []DailyObserver
	prices    PriceList
}

// Option customises a Service.
type Option func(*Service)

// WithPriceList prices sales entered without a price from the master data
// price bands instead of the flat configured default.
func WithPriceList(p PriceList) Option {
	return func(s *Service) {
		s.prices = p
	}
}

// NewService wires a batch ledger. farmers may be nil, in which case farmer
// names are taken from the payload as is.
func NewService(repo Repository, farmers FarmerLookup, calc *metrics.Calculator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		farmers: farmers,
		calc:    calc,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPrice is the price per kg offered for birds of b at weightGrams on
// the given day. It falls back to the configured default when no price list
// is wired or the lookup fails.
func (s *Service) DefaultPrice(ctx context.Context, b models.Batch, weightGrams float64, on string) float64 {
	fallback := s.calc.Rules().DefaultPricePerKg
	if s.prices == nil {
		return fallback
	}
	price, err := s.prices.PricePerKg(ctx, b.ChickType, weightGrams, on)
	if err != nil || price <= 0 {
		s.logger.Warn("price lookup failed, using default price",
			zap.String("batch", b.BatchCode),
			zap.String("chick_type", string(b.ChickType)),
			zap.Error(err),
		)
		return fallback
	}
	return price
}

// Subscribe registers an observer for daily entries.
func (s *Service) Subscribe(o DailyObserver) {
	s.observers = append(s.observers, o)
}

// Calculator exposes the metrics calculator the ledger uses.
func (s *Service) Calculator() *metrics.Calculator {
	return s.calc
}

// Filter returns every batch matching q.
func (s *Service) Filter(ctx context.Context, q filter.Query) ([]models.Batch, error) {
	all, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return filter.Apply(all, q, batchFields), nil
}

// List returns one page of batches matching q.
func (s *Service) List(ctx context.Context, q filter.Query, page int) (filter.Page[models.Batch], error) {
	matched, err := s.Filter(ctx, q)
	if err != nil {
		return filter.Page[models.Batch]{}, err
	}
	return filter.Paginate(matched, page, s.calc.Rules().BatchPageSize), nil
}

// Get returns a batch with all of its entries.
func (s *Service) Get(ctx context.Context, id string) (models.Batch, error) {
	b, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return models.Batch{}, mapRepoError(id, err)
	}
	return b, nil
}

// Create validates and stores a new batch, assigning its code. Entry logs
// and derived figures in the payload are discarded; the farmer share is
// settled from the configured farmer rates as sales come in.
func (s *Service) Create(ctx context.Context, in models.Batch) (models.Batch, error) {
	b := models.Batch{
		FarmerID:     strings.TrimSpace(in.FarmerID),
		FarmerName:   in.FarmerName,
		FarmName:     in.FarmName,
		ShedID:       in.ShedID,
		ChickType:    in.ChickType,
		HatchingDate: in.HatchingDate,
		StartDate:    in.StartDate,
		TotalBirds:   in.TotalBirds,
		CurrentBirds: in.CurrentBirds,
		FeedStock:    in.FeedStock,
		Supervisor:   in.Supervisor,
		Status:       models.BatchActive,
	}
	if b.StartDate == "" {
		b.StartDate = s.today()
	}
	if b.HatchingDate == "" {
		b.HatchingDate = b.StartDate
	}
	if b.CurrentBirds == 0 {
		b.CurrentBirds = b.TotalBirds
	}
	if b.TotalBirds <= 0 {
		return models.Batch{}, fmt.Errorf("%w: total birds must be positive", ErrInvalidEntry)
	}
	if b.FeedStock < 0 {
		return models.Batch{}, fmt.Errorf("%w: feed stock must not be negative", ErrInvalidEntry)
	}
	if err := b.Validate(); err != nil {
		return models.Batch{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if s.farmers != nil {
		farmer, err := s.farmers.GetFarmer(ctx, b.FarmerID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.Batch{}, fmt.Errorf("%w: unknown farmer %s", ErrInvalidEntry, b.FarmerID)
			}
			return models.Batch{}, fmt.Errorf("load farmer %s: %w", b.FarmerID, err)
		}
		b.FarmerName = farmer.Name
		if b.FarmName == "" {
			b.FarmName = farmer.CompanyName
		}
	}

	start, _ := models.ParseDate(b.StartDate)

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.repo.ListBatches(ctx)
	if err != nil {
		return models.Batch{}, fmt.Errorf("list batches: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, e := range existing {
		codes = append(codes, e.BatchCode)
	}
	b.BatchCode = models.NextCode(models.BatchCodePrefix, start.Year(), codes)
	b.ID = b.BatchCode

	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return models.Batch{}, fmt.Errorf("store batch %s: %w", b.ID, err)
	}

	s.logger.Info("batch created",
		zap.String("batch", b.BatchCode),
		zap.String("farmer", b.FarmerID),
		zap.Int("birds", b.TotalBirds),
	)
	return b, nil
}

// Complete closes a batch on endDate (today when empty). farmerShare, when
// given, replaces the share settled from the farmer rates, for settlements
// agreed outside the standard rates.
func (s *Service) Complete(ctx context.Context, id, endDate string, farmerShare *float64) (models.Batch, error) {
	if endDate == "" {
		endDate = s.today()
	}
	end, err := models.ParseDate(endDate)
	if err != nil {
		return models.Batch{}, fmt.Errorf("%w: end date: %v", ErrInvalidEntry, err)
	}
	if farmerShare != nil && *farmerShare < 0 {
		return models.Batch{}, fmt.Errorf("%w: farmer share must not be negative", ErrInvalidEntry)
	}

	b, err := s.repo.UpdateBatch(ctx, id, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		start, err := models.ParseDate(b.StartDate)
		if err == nil && end.Before(start) {
			return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidEntry, endDate, b.StartDate)
		}
		b.Status = models.BatchCompleted
		b.EndDate = &endDate
		s.recompute(b)
		if farmerShare != nil {
			b.FarmerShare = *farmerShare
		}
		return nil
	})
	if err != nil {
		return models.Batch{}, mapRepoError(id, err)
	}

	s.logger.Info("batch completed",
		zap.String("batch", b.BatchCode),
		zap.String("end_date", endDate),
		zap.Float64("farmer_share", b.FarmerShare),
		zap.Bool("share_overridden", farmerShare != nil),
	)
	return b, nil
}

// Metrics computes the derived report for a batch as of now.
func (s *Service) Metrics(ctx context.Context, id string) (metrics.BatchMetrics, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return metrics.BatchMetrics{}, err
	}
	return s.calc.Summarize(b, s.now()), nil
}

func (s *Service) today() string {
	return s.now().Format(models.DateLayout)
}

func mapRepoError(id string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}
