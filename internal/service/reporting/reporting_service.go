// Package reporting produces the periodic batch summaries: nightly snapshots
// persisted to MongoDB and Google Sheets, and the weekly WhatsApp digest.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/sheets"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

const (
	snapshotTab    = "Snapshots"
	dateTimeLayout = "2006-01-02 15:04"
)

// SnapshotHeader is the first row of the Snapshots sheet.
var SnapshotHeader = []interface{}{
	"Taken At", "Batch", "Farmer", "Status", "Current Birds", "Total Mortality",
	"Mortality Rate (%)", "FCR", "Feed Cost", "Medicine Cost", "Other Expenses",
	"Sales Revenue", "Net Profit", "Batch ID",
}

// BatchSource lists the batches to summarize.
type BatchSource interface {
	Filter(ctx context.Context, q filter.Query) ([]models.Batch, error)
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, snapshots []models.BatchSnapshot) error
}

// SheetWriter is the spreadsheet the snapshots are mirrored to.
type SheetWriter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Service builds and exports batch summaries.
type Service struct {
	batches BatchSource
	calc    *metrics.Calculator
	store   SnapshotStore
	sheet   SheetWriter
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. store and sheet may be
// nil when the corresponding backend is not configured.
func NewService(batches BatchSource, calc *metrics.Calculator, store SnapshotStore, sheet SheetWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		batches: batches,
		calc:    calc,
		store:   store,
		sheet:   sheet,
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot summarizes one batch as of at.
func (s *Service) Snapshot(b models.Batch, at time.Time) models.BatchSnapshot {
	m := s.calc.Summarize(b, at)
	return models.BatchSnapshot{
		BatchID:        b.ID,
		BatchCode:      b.BatchCode,
		FarmerName:     b.FarmerName,
		Status:         string(b.Status),
		CurrentBirds:   m.CurrentBirds,
		TotalMortality: m.TotalMortality,
		MortalityRate:  m.MortalityRate,
		FCR:            m.FCR,
		FeedCost:       m.Financials.FeedCost,
		MedicineCost:   m.Financials.MedicineCost,
		OtherExpenses:  m.Financials.OtherExpenses,
		SalesRevenue:   m.Financials.SalesRevenue,
		NetProfit:      m.Financials.NetProfit,
		CreatedAt:      at.UTC(),
	}
}

// Snapshots summarizes every active batch.
func (s *Service) Snapshots(ctx context.Context) ([]models.BatchSnapshot, error) {
	active, err := s.batches.Filter(ctx, filter.Query{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list active batches: %w", err)
	}

	at := s.now()
	out := make([]models.BatchSnapshot, 0, len(active))
	for _, b := range active {
		out = append(out, s.Snapshot(b, at))
	}
	return out, nil
}

// Export takes the nightly snapshot and writes it to every configured
// backend. A failing backend does not prevent the others from being written.
func (s *Service) Export(ctx context.Context) (int, error) {
	snaps, err := s.Snapshots(ctx)
	if err != nil {
		return 0, err
	}
	if len(snaps) == 0 {
		s.logger.Info("no active batches to snapshot")
		return 0, nil
	}

	var errs []error
	if s.store != nil {
		if err := s.store.SaveSnapshots(ctx, snaps); err != nil {
			errs = append(errs, fmt.Errorf("save snapshots: %w", err))
		}
	}
	if s.sheet != nil {
		if err := s.appendToSheet(ctx, snaps); err != nil {
			errs = append(errs, fmt.Errorf("export snapshots to sheet: %w", err))
		}
	}

	s.logger.Info("batch snapshots exported", zap.Int("batches", len(snaps)), zap.Int("failed_backends", len(errs)))
	return len(snaps), errors.Join(errs...)
}

func (s *Service) appendToSheet(ctx context.Context, snaps []models.BatchSnapshot) error {
	rows := make([][]interface{}, 0, len(snaps)+1)

	existing, err := s.sheet.ReadRange(ctx, sheets.HeaderCell(snapshotTab))
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		rows = append(rows, SnapshotHeader)
	}

	for _, snap := range snaps {
		rows = append(rows, SnapshotRow(snap))
	}
	return s.sheet.AppendRows(ctx, sheets.ColumnRange(snapshotTab, len(SnapshotHeader)), rows)
}

// SnapshotRow is the spreadsheet row of a snapshot, in SnapshotHeader order.
func SnapshotRow(s models.BatchSnapshot) []interface{} {
	return []interface{}{
		s.CreatedAt.Format(dateTimeLayout),
		s.BatchCode,
		s.FarmerName,
		s.Status,
		s.CurrentBirds,
		s.TotalMortality,
		s.MortalityRate,
		s.FCR,
		s.FeedCost,
		s.MedicineCost,
		s.OtherExpenses,
		s.SalesRevenue,
		s.NetProfit,
		s.BatchID,
	}
}

// WeeklyDigest is the manager's weekly summary of the active batches, with
// the daily entries logged in the seven days up to now.
func (s *Service) WeeklyDigest(ctx context.Context, now time.Time) (string, error) {
	active, err := s.batches.Filter(ctx, filter.Query{ActiveOnly: true})
	if err != nil {
		return "", fmt.Errorf("list active batches: %w", err)
	}

	end := now.Format(models.DateLayout)
	start := now.AddDate(0, 0, -6).Format(models.DateLayout)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Weekly summary (%s to %s)\n", start, end)
	if len(active) == 0 {
		sb.WriteString("No active batches.")
		return sb.String(), nil
	}

	var birds, deaths int
	for _, b := range active {
		m := s.calc.Summarize(b, now)
		weekDeaths, reports := 0, 0
		for _, e := range b.DailyEntries {
			if e.Date >= start && e.Date <= end {
				weekDeaths += e.Mortality
				reports++
			}
		}
		birds += m.CurrentBirds
		deaths += weekDeaths

		fmt.Fprintf(&sb, "\n%s %s: %d birds, %d dead this week (%d reports), mortality %.2f%%",
			b.BatchCode, b.FarmName, m.CurrentBirds, weekDeaths, reports, m.MortalityRate)
		if m.FCRAvailable {
			fmt.Fprintf(&sb, ", FCR %.2f", m.FCR)
		}
		if reports == 0 {
			sb.WriteString(" - no daily entries")
		}
	}
	fmt.Fprintf(&sb, "\n\nTotal: %d active batches, %d birds, %d deaths this week.", len(active), birds, deaths)
	return sb.String(), nil
}
