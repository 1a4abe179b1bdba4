// Package registry maintains the counterparties of the business: contracted
// farmers with their sheds, traders buying birds and eggs, and the operator
// accounts of the back office.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/cache"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
	"github.com/mamadbah2/poultryops/pkg/clients/pincode"
)

// ErrNotFound indicates the farmer, trader or user does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidInput indicates a payload failed validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrPincodeNotFound indicates no locality is known for a pincode.
var ErrPincodeNotFound = errors.New("pincode not found")

// ErrLookupUnavailable indicates no pincode service is configured or the
// service could not be reached.
var ErrLookupUnavailable = errors.New("pincode lookup unavailable")

// Repository is the storage the registry needs.
type Repository interface {
	ListFarmers(ctx context.Context) ([]models.Farmer, error)
	GetFarmer(ctx context.Context, id string) (models.Farmer, error)
	CreateFarmer(ctx context.Context, f models.Farmer) error
	UpdateFarmer(ctx context.Context, f models.Farmer) error

	ListTraders(ctx context.Context) ([]models.Trader, error)
	GetTrader(ctx context.Context, id string) (models.Trader, error)
	CreateTrader(ctx context.Context, t models.Trader) error
	UpdateTrader(ctx context.Context, t models.Trader) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error
}

// BatchSource supplies batches for derived counterparty figures.
type BatchSource interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
}

// Service implements the registry operations.
type Service struct {
	repo     Repository
	batches  BatchSource
	calc     *metrics.Calculator
	pincodes pincode.Client
	cache    *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	codeMu   sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithPincodeLookup enables address auto-fill. c may be nil for no caching.
func WithPincodeLookup(client pincode.Client, c *cache.Cache) Option {
	return func(s *Service) {
		s.pincodes = client
		s.cache = c
	}
}

// NewService wires the registry.
func NewService(repo Repository, batches BatchSource, calc *metrics.Calculator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		batches: batches,
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

func (s *Service) listBatches(ctx context.Context) ([]models.Batch, error) {
	if s.batches == nil {
		return nil, nil
	}
	all, err := s.batches.ListBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return all, nil
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
