package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

var traderFields = filter.Fields[models.Trader]{
	Text: func(t models.Trader) []string {
		return []string{t.Name, t.CompanyName, t.TraderCode, t.Contact}
	},
	ID:     func(t models.Trader) string { return t.ID },
	Date:   func(t models.Trader) string { return t.LastPurchase },
	Status: func(t models.Trader) string { return string(t.Status) },
	Active: func(t models.Trader) bool { return t.Status == models.StatusActive },
}

// TraderStats summarises a trader's purchases across every batch.
type TraderStats struct {
	TraderID       string  `json:"traderId"`
	Sales          int     `json:"sales"`
	BirdsBought    int     `json:"birdsBought"`
	TotalPurchases float64 `json:"totalPurchases"`
	AvgPricePerKg  float64 `json:"avgPricePerKg"`
	LastPurchase   string  `json:"lastPurchase"`
}

// ListTraders returns traders matching q. Purchase totals are derived from
// recorded sales when a trader has any.
func (s *Service) ListTraders(ctx context.Context, q filter.Query) ([]models.Trader, error) {
	all, err := s.repo.ListTraders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list traders: %w", err)
	}
	stats, err := s.traderStats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		applyStats(&all[i], stats[all[i].ID])
	}
	return filter.Apply(all, q, traderFields), nil
}

// GetTrader returns one trader.
func (s *Service) GetTrader(ctx context.Context, id string) (models.Trader, error) {
	t, err := s.repo.GetTrader(ctx, id)
	if err != nil {
		return models.Trader{}, mapRepoError("trader", id, err)
	}
	stats, err := s.traderStats(ctx)
	if err != nil {
		return models.Trader{}, err
	}
	applyStats(&t, stats[t.ID])
	return t, nil
}

// TraderStats returns purchase statistics for one trader.
func (s *Service) TraderStats(ctx context.Context, id string) (TraderStats, error) {
	if _, err := s.repo.GetTrader(ctx, id); err != nil {
		return TraderStats{}, mapRepoError("trader", id, err)
	}
	stats, err := s.traderStats(ctx)
	if err != nil {
		return TraderStats{}, err
	}
	st, ok := stats[id]
	if !ok {
		return TraderStats{TraderID: id}, nil
	}
	return st, nil
}

// CreateTrader registers a trader under the next code of its registration year.
func (s *Service) CreateTrader(ctx context.Context, in models.Trader) (models.Trader, error) {
	t := in
	t.Name = strings.TrimSpace(t.Name)
	t.Contact = strings.TrimSpace(t.Contact)
	if t.Name == "" {
		return models.Trader{}, fmt.Errorf("%w: trader name is required", ErrInvalidInput)
	}
	if t.Contact == "" {
		return models.Trader{}, fmt.Errorf("%w: contact number is required", ErrInvalidInput)
	}
	if t.RegistrationYear == 0 {
		t.RegistrationYear = s.now().Year()
	}
	if t.Status == "" {
		t.Status = models.StatusActive
	}
	t.TotalPurchases = 0
	t.LastPurchase = ""
	t.Address = s.fillAddress(ctx, t.Address)

	s.codeMu.Lock()
	defer s.codeMu.Unlock()

	existing, err := s.repo.ListTraders(ctx)
	if err != nil {
		return models.Trader{}, fmt.Errorf("list traders: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, e := range existing {
		if e.RegistrationYear == t.RegistrationYear {
			codes = append(codes, e.TraderCode)
		}
	}
	t.TraderCode = models.NextCode(models.TraderCodePrefix, t.RegistrationYear, codes)
	t.ID = t.TraderCode

	if err := s.repo.CreateTrader(ctx, t); err != nil {
		return models.Trader{}, mapRepoError("trader", t.ID, err)
	}
	s.logger.Info("trader registered", zap.String("code", t.TraderCode))
	return t, nil
}

// UpdateTrader replaces the editable fields of a trader.
func (s *Service) UpdateTrader(ctx context.Context, id string, in models.Trader) (models.Trader, error) {
	current, err := s.repo.GetTrader(ctx, id)
	if err != nil {
		return models.Trader{}, mapRepoError("trader", id, err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.Trader{}, fmt.Errorf("%w: trader name is required", ErrInvalidInput)
	}

	updated := in
	updated.ID = current.ID
	updated.TraderCode = current.TraderCode
	updated.RegistrationYear = current.RegistrationYear
	updated.TotalPurchases = current.TotalPurchases
	updated.LastPurchase = current.LastPurchase
	updated.Name = strings.TrimSpace(in.Name)
	updated.Address = s.fillAddress(ctx, in.Address)
	if updated.Status == "" {
		updated.Status = current.Status
	}

	if err := s.repo.UpdateTrader(ctx, updated); err != nil {
		return models.Trader{}, mapRepoError("trader", id, err)
	}
	return s.GetTrader(ctx, id)
}

func (s *Service) traderStats(ctx context.Context) (map[string]TraderStats, error) {
	batches, err := s.listBatches(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		stats    TraderStats
		total    decimal.Decimal
		priceSum decimal.Decimal
	}
	byTrader := make(map[string]*acc)
	for _, b := range batches {
		for _, sale := range b.SalesEntries {
			if sale.TraderID == "" {
				continue
			}
			a, ok := byTrader[sale.TraderID]
			if !ok {
				a = &acc{stats: TraderStats{TraderID: sale.TraderID}}
				byTrader[sale.TraderID] = a
			}
			a.stats.Sales++
			a.stats.BirdsBought += sale.Birds
			a.total = a.total.Add(decimal.NewFromFloat(metrics.EntrySaleTotal(sale)))
			a.priceSum = a.priceSum.Add(decimal.NewFromFloat(sale.PricePerKg))
			if sale.Date > a.stats.LastPurchase {
				a.stats.LastPurchase = sale.Date
			}
		}
	}

	out := make(map[string]TraderStats, len(byTrader))
	for id, a := range byTrader {
		a.stats.TotalPurchases = a.total.Round(2).InexactFloat64()
		a.stats.AvgPricePerKg = a.priceSum.Div(decimal.NewFromInt(int64(a.stats.Sales))).Round(2).InexactFloat64()
		out[id] = a.stats
	}
	return out, nil
}

func applyStats(t *models.Trader, st TraderStats) {
	if st.Sales == 0 {
		return
	}
	t.TotalPurchases = st.TotalPurchases
	t.LastPurchase = st.LastPurchase
}
