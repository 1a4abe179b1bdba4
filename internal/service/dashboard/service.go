// Package dashboard aggregates the company-wide figures shown on the landing
// page: flock size, losses, money and stock alerts across every batch.
package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/inventory"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// Store is the read side of the ledger the summary draws from.
type Store interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListFarmers(ctx context.Context) ([]models.Farmer, error)
	ListTraders(ctx context.Context) ([]models.Trader, error)
}

// StockReporter supplies the current stock position.
type StockReporter interface {
	Stock(ctx context.Context) (inventory.Report, error)
}

// Summary is the dashboard payload.
type Summary struct {
	ActiveBatches    int     `json:"activeBatches"`
	CompletedBatches int     `json:"completedBatches"`
	BirdsPlaced      int     `json:"birdsPlaced"`
	CurrentBirds     int     `json:"currentBirds"`
	BirdsSold        int     `json:"birdsSold"`
	TotalMortality   int     `json:"totalMortality"`
	MortalityRate    float64 `json:"mortalityRate"`
	GrossAmount      float64 `json:"grossAmount"`
	ProductionCost   float64 `json:"productionCost"`
	NetProfit        float64 `json:"netProfit"`
	FarmerShare      float64 `json:"farmerShare"`
	CompanyShare     float64 `json:"companyShare"`
	ActiveFarmers    int     `json:"activeFarmers"`
	ActiveTraders    int     `json:"activeTraders"`
	FeedBags         float64 `json:"feedBags"`
	StockValue       float64 `json:"stockValue"`
	StockAlerts      int     `json:"stockAlerts"`
}

// Service builds the summary.
type Service struct {
	store  Store
	stock  StockReporter
	logger *zap.Logger
}

// NewService wires the dashboard.
func NewService(store Store, stock StockReporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, stock: stock, logger: logger}
}

// Summary totals every batch. Current birds count active batches only, and
// the mortality rate is total losses over birds placed. Money figures come
// from each batch's financial summary so they agree with the batch reports.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	all, err := s.store.ListBatches(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list batches: %w", err)
	}

	var out Summary
	gross, production, share := decimal.Zero, decimal.Zero, decimal.Zero
	for _, b := range all {
		if b.IsActive() {
			out.ActiveBatches++
			out.CurrentBirds += b.CurrentBirds
		} else {
			out.CompletedBatches++
		}
		out.BirdsPlaced += b.TotalBirds
		out.TotalMortality += metrics.TotalMortality(b.DailyEntries)

		f := metrics.FinancialSummary(b)
		out.BirdsSold += f.BirdsSold
		gross = gross.Add(decimal.NewFromFloat(f.GrossAmount))
		production = production.Add(decimal.NewFromFloat(f.ProductionCost))
		share = share.Add(decimal.NewFromFloat(f.FarmerShare))
	}
	if out.BirdsPlaced > 0 {
		out.MortalityRate = decimal.NewFromInt(int64(out.TotalMortality)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(out.BirdsPlaced))).
			Round(2).InexactFloat64()
	}
	out.GrossAmount = gross.Round(2).InexactFloat64()
	out.ProductionCost = production.Round(2).InexactFloat64()
	out.NetProfit = gross.Sub(production).Round(2).InexactFloat64()
	out.FarmerShare = share.Round(2).InexactFloat64()
	out.CompanyShare = gross.Sub(share).Round(2).InexactFloat64()

	farmers, err := s.store.ListFarmers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list farmers: %w", err)
	}
	for _, f := range farmers {
		if f.Status == models.StatusActive {
			out.ActiveFarmers++
		}
	}
	traders, err := s.store.ListTraders(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list traders: %w", err)
	}
	for _, t := range traders {
		if t.Status == models.StatusActive {
			out.ActiveTraders++
		}
	}

	stock, err := s.stock.Stock(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("stock report: %w", err)
	}
	out.FeedBags = stock.FeedBags
	out.StockValue = stock.TotalValue
	out.StockAlerts = stock.LowStockItems + stock.OutOfStockItems

	s.logger.Debug("dashboard summarized",
		zap.Int("batches", len(all)),
		zap.Float64("gross", out.GrossAmount),
		zap.Int("stock_alerts", out.StockAlerts),
	)
	return out, nil
}
