// Package memory is the process-local store that backs every listing. It
// keeps insertion order so listings are stable, and hands out copies so
// callers can never mutate stored records behind the lock.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

type collection[T any] struct {
	order []string
	items map[string]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) insert(id string, item T) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", models.ErrNotFound)
	}
	if _, exists := c.items[id]; exists {
		return fmt.Errorf("id %s: %w", id, models.ErrDuplicate)
	}
	c.order = append(c.order, id)
	c.items[id] = item
	return nil
}

func (c *collection[T]) get(id string) (T, error) {
	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("id %s: %w", id, models.ErrNotFound)
	}
	return item, nil
}

func (c *collection[T]) list(clone func(T) T) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.items[id]))
	}
	return out
}

// Store holds batches, counterparties, users and master data in memory.
type Store struct {
	mu        sync.RWMutex
	batches   *collection[models.Batch]
	farmers   *collection[models.Farmer]
	traders   *collection[models.Trader]
	users     *collection[models.User]
	birdTypes *collection[models.BirdType]
	prices    *collection[models.PriceBand]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		batches:   newCollection[models.Batch](),
		farmers:   newCollection[models.Farmer](),
		traders:   newCollection[models.Trader](),
		users:     newCollection[models.User](),
		birdTypes: newCollection[models.BirdType](),
		prices:    newCollection[models.PriceBand](),
	}
}

// ListBatches returns every batch in insertion order.
func (s *Store) ListBatches(_ context.Context) ([]models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches.list(cloneBatch), nil
}

// GetBatch returns one batch by id.
func (s *Store) GetBatch(_ context.Context, id string) (models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.batches.get(id)
	if err != nil {
		return models.Batch{}, err
	}
	return cloneBatch(b), nil
}

// CreateBatch inserts a new batch.
func (s *Store) CreateBatch(_ context.Context, b models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches.insert(b.ID, cloneBatch(b))
}

// UpdateBatch applies fn to a copy of the batch under the write lock and
// stores the result only when fn succeeds.
func (s *Store) UpdateBatch(_ context.Context, id string, fn func(*models.Batch) error) (models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.batches.get(id)
	if err != nil {
		return models.Batch{}, err
	}
	working := cloneBatch(current)
	if err := fn(&working); err != nil {
		return models.Batch{}, err
	}
	s.batches.items[id] = working
	return cloneBatch(working), nil
}

// ListFarmers returns every farmer in insertion order.
func (s *Store) ListFarmers(_ context.Context) ([]models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.farmers.list(cloneFarmer), nil
}

// GetFarmer returns one farmer by id.
func (s *Store) GetFarmer(_ context.Context, id string) (models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := s.farmers.get(id)
	if err != nil {
		return models.Farmer{}, err
	}
	return cloneFarmer(f), nil
}

// CreateFarmer inserts a new farmer.
func (s *Store) CreateFarmer(_ context.Context, f models.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.farmers.insert(f.ID, cloneFarmer(f))
}

// UpdateFarmer replaces an existing farmer.
func (s *Store) UpdateFarmer(_ context.Context, f models.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.farmers.get(f.ID); err != nil {
		return err
	}
	s.farmers.items[f.ID] = cloneFarmer(f)
	return nil
}

// ListTraders returns every trader in insertion order.
func (s *Store) ListTraders(_ context.Context) ([]models.Trader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.traders.list(identity[models.Trader]), nil
}

// GetTrader returns one trader by id.
func (s *Store) GetTrader(_ context.Context, id string) (models.Trader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.traders.get(id)
}

// CreateTrader inserts a new trader.
func (s *Store) CreateTrader(_ context.Context, t models.Trader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traders.insert(t.ID, t)
}

// UpdateTrader replaces an existing trader.
func (s *Store) UpdateTrader(_ context.Context, t models.Trader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.traders.get(t.ID); err != nil {
		return err
	}
	s.traders.items[t.ID] = t
	return nil
}

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.list(cloneUser), nil
}

// GetUser returns one user by id.
func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.users.get(id)
	if err != nil {
		return models.User{}, err
	}
	return cloneUser(u), nil
}

// FindUserByUsername looks a user up by login name.
func (s *Store) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.users.order {
		if u := s.users.items[id]; u.Username == username {
			return cloneUser(u), nil
		}
	}
	return models.User{}, fmt.Errorf("username %s: %w", username, models.ErrNotFound)
}

// FindUserByPhone looks a user up by phone number, digits only.
func (s *Store) FindUserByPhone(_ context.Context, phone string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := digits(phone)
	for _, id := range s.users.order {
		if u := s.users.items[id]; want != "" && digits(u.Phone) == want {
			return cloneUser(u), nil
		}
	}
	return models.User{}, fmt.Errorf("phone %s: %w", phone, models.ErrNotFound)
}

// CreateUser inserts a new user. Usernames are unique.
func (s *Store) CreateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.users.order {
		if s.users.items[id].Username == u.Username {
			return fmt.Errorf("username %s: %w", u.Username, models.ErrDuplicate)
		}
	}
	return s.users.insert(u.ID, cloneUser(u))
}

// UpdateUser replaces an existing user.
func (s *Store) UpdateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.users.get(u.ID); err != nil {
		return err
	}
	s.users.items[u.ID] = cloneUser(u)
	return nil
}

// ListBirdTypes returns every bird type in insertion order.
func (s *Store) ListBirdTypes(_ context.Context) ([]models.BirdType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.birdTypes.list(identity[models.BirdType]), nil
}

// GetBirdType returns one bird type by id.
func (s *Store) GetBirdType(_ context.Context, id string) (models.BirdType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.birdTypes.get(id)
}

// CreateBirdType inserts a bird type. Names are unique.
func (s *Store) CreateBirdType(_ context.Context, t models.BirdType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.birdTypes.order {
		if s.birdTypes.items[id].Name == t.Name {
			return fmt.Errorf("bird type %s: %w", t.Name, models.ErrDuplicate)
		}
	}
	return s.birdTypes.insert(t.ID, t)
}

// UpdateBirdType replaces an existing bird type.
func (s *Store) UpdateBirdType(_ context.Context, t models.BirdType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.birdTypes.get(t.ID); err != nil {
		return err
	}
	s.birdTypes.items[t.ID] = t
	return nil
}

// ListPriceBands returns every price band in insertion order.
func (s *Store) ListPriceBands(_ context.Context) ([]models.PriceBand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.list(identity[models.PriceBand]), nil
}

// GetPriceBand returns one price band by id.
func (s *Store) GetPriceBand(_ context.Context, id string) (models.PriceBand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.get(id)
}

// CreatePriceBand inserts a price band.
func (s *Store) CreatePriceBand(_ context.Context, p models.PriceBand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prices.insert(p.ID, p)
}

// UpdatePriceBand replaces an existing price band.
func (s *Store) UpdatePriceBand(_ context.Context, p models.PriceBand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.prices.get(p.ID); err != nil {
		return err
	}
	s.prices.items[p.ID] = p
	return nil
}

func identity[T any](v T) T { return v }

func cloneBatch(b models.Batch) models.Batch {
	if b.EndDate != nil {
		end := *b.EndDate
		b.EndDate = &end
	}
	b.DailyEntries = append([]models.DailyEntry(nil), b.DailyEntries...)
	b.SalesEntries = append([]models.SalesEntry(nil), b.SalesEntries...)
	b.FeedEntries = append([]models.FeedEntry(nil), b.FeedEntries...)
	b.MedicineEntries = append([]models.MedicineEntry(nil), b.MedicineEntries...)
	b.EggEntries = append([]models.EggEntry(nil), b.EggEntries...)
	b.ExpenseEntries = append([]models.ExpenseEntry(nil), b.ExpenseEntries...)
	return b
}

func cloneFarmer(f models.Farmer) models.Farmer {
	f.Sheds = append([]models.Shed(nil), f.Sheds...)
	return f
}

func cloneUser(u models.User) models.User {
	u.AssignedFarms = append([]string(nil), u.AssignedFarms...)
	return u
}

func digits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
