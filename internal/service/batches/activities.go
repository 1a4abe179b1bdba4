package batches

import (
	"context"
	"fmt"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
)

var activityFields = filter.Fields[models.Activity]{
	Text: func(a models.Activity) []string {
		return []string{a.FarmerName, a.BatchNumber, a.Detail}
	},
	ID:     func(a models.Activity) string { return a.FarmerID },
	Date:   func(a models.Activity) string { return a.Date },
	Status: func(a models.Activity) string { return string(a.BatchStatus) },
	Active: func(a models.Activity) bool { return a.BatchStatus == models.BatchActive },
}

// Activities flattens one entry ledger across every batch, in batch order
// then entry order, and filters and pages the result.
func (s *Service) Activities(ctx context.Context, kind models.ActivityKind, q filter.Query, page int) (filter.Page[models.Activity], error) {
	matched, err := s.FilterActivities(ctx, kind, q)
	if err != nil {
		return filter.Page[models.Activity]{}, err
	}
	return filter.Paginate(matched, page, s.calc.Rules().ActivityPageSize), nil
}

// FilterActivities returns every activity of kind matching q.
func (s *Service) FilterActivities(ctx context.Context, kind models.ActivityKind, q filter.Query) ([]models.Activity, error) {
	all, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	flat, err := Flatten(all, kind)
	if err != nil {
		return nil, err
	}
	return filter.Apply(flat, q, activityFields), nil
}

// Flatten joins the entries of kind with their batch context.
func Flatten(batches []models.Batch, kind models.ActivityKind) ([]models.Activity, error) {
	switch kind {
	case models.ActivityDaily, models.ActivitySales, models.ActivityMedication, models.ActivityFeed:
	default:
		return nil, fmt.Errorf("%w: unknown activity kind %q", ErrInvalidEntry, kind)
	}

	out := []models.Activity{}
	for _, b := range batches {
		base := models.Activity{
			Kind:        kind,
			BatchID:     b.ID,
			BatchNumber: b.BatchCode,
			FarmName:    b.FarmName,
			FarmerID:    b.FarmerID,
			FarmerName:  b.FarmerName,
			BatchStatus: b.Status,
		}

		switch kind {
		case models.ActivityDaily:
			for _, e := range b.DailyEntries {
				a := base
				a.ID, a.Date, a.AddedBy, a.Entry = e.ID, e.Date, e.AddedBy, e
				a.Detail = string(e.FeedType)
				a.Quantity = float64(e.Losses())
				out = append(out, a)
			}
		case models.ActivitySales:
			for _, e := range b.SalesEntries {
				a := base
				a.ID, a.Date, a.AddedBy, a.Entry = e.ID, e.Date, e.AddedBy, e
				a.Detail = e.Trader
				a.Quantity = float64(e.Birds)
				a.Amount = e.TotalAmount
				out = append(out, a)
			}
		case models.ActivityMedication:
			for _, e := range b.MedicineEntries {
				a := base
				a.ID, a.Date, a.AddedBy, a.Entry = e.ID, e.Date, e.AddedBy, e
				a.Detail = e.MedicineName
				a.Quantity = e.Quantity
				a.Amount = e.Amount
				out = append(out, a)
			}
		case models.ActivityFeed:
			for _, e := range b.FeedEntries {
				a := base
				a.ID, a.Date, a.AddedBy, a.Entry = e.ID, e.Date, e.AddedBy, e
				a.Detail = string(e.FeedType)
				a.Quantity = e.NumberOfBags
				a.Amount = e.TotalAmount
				out = append(out, a)
			}
		}
	}
	return out, nil
}
