package batches

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// AddDailyEntry appends a day's observation. Losses (deaths plus weak and
// leg-weak culls) leave the flock, feed bags are drawn from stock, and the
// derived batch figures are recomputed from the full log.
func (s *Service) AddDailyEntry(ctx context.Context, batchID string, in models.DailyEntry, addedBy string) (models.Batch, models.DailyEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if err := validateDaily(entry); err != nil {
		return models.Batch{}, models.DailyEntry{}, err
	}

	rules := s.calc.Rules()
	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		losses := entry.Losses()
		if losses > b.CurrentBirds {
			return fmt.Errorf("%w: %d losses reported, %d birds on farm", ErrInsufficientBirds, losses, b.CurrentBirds)
		}

		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.TotalMortality = losses
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()
		if entry.BirdAge == 0 {
			if day, err := models.ParseDate(entry.Date); err == nil {
				entry.BirdAge = metrics.BirdAge(b.HatchingDate, day)
			}
		}

		if entry.FeedBags == 0 && entry.FeedUsed > 0 {
			entry.FeedBags = decimal.NewFromFloat(entry.FeedUsed).
				Div(decimal.NewFromFloat(rules.FeedBagWeightKg)).Round(2).InexactFloat64()
		}
		bags := entry.FeedBags

		b.DailyEntries = append(b.DailyEntries, entry)
		b.CurrentBirds -= losses
		b.WeakBirds += entry.WeakBirds
		b.LegWeakBirds += entry.LegWeakBirds
		b.FeedUsed = addFloat(b.FeedUsed, bags)
		b.FeedStock = subFloor(b.FeedStock, bags)
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.DailyEntry{}, mapRepoError(batchID, err)
	}

	s.logger.Info("daily entry recorded",
		zap.String("batch", b.BatchCode),
		zap.String("date", entry.Date),
		zap.Int("losses", entry.TotalMortality),
		zap.Float64("mortality_rate", b.MortalityRate),
	)

	for _, o := range s.observers {
		o.DailyEntryRecorded(ctx, b, entry)
	}
	return b, entry, nil
}

// AddSalesEntry records a sale. The total is always recomputed from birds,
// weight and price; a total in the payload is ignored.
func (s *Service) AddSalesEntry(ctx context.Context, batchID string, in models.SalesEntry, addedBy string) (models.Batch, models.SalesEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if entry.TransportType == "" {
		entry.TransportType = models.TransportCompany
	}
	if entry.PricePerKg == 0 && entry.AvgWeight > 0 {
		current, err := s.repo.GetBatch(ctx, batchID)
		if err != nil {
			return models.Batch{}, models.SalesEntry{}, mapRepoError(batchID, err)
		}
		entry.PricePerKg = s.DefaultPrice(ctx, current, entry.AvgWeight, entry.Date)
	}
	if err := validateSale(entry); err != nil {
		return models.Batch{}, models.SalesEntry{}, err
	}

	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		if entry.Birds > b.CurrentBirds {
			return fmt.Errorf("%w: selling %d, %d birds on farm", ErrInsufficientBirds, entry.Birds, b.CurrentBirds)
		}

		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.TotalAmount = metrics.EntrySaleTotal(entry)
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()

		b.SalesEntries = append(b.SalesEntries, entry)
		b.CurrentBirds -= entry.Birds
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.SalesEntry{}, mapRepoError(batchID, err)
	}

	s.logger.Info("sale recorded",
		zap.String("batch", b.BatchCode),
		zap.String("trader", entry.Trader),
		zap.Int("birds", entry.Birds),
		zap.Float64("total", entry.TotalAmount),
	)
	return b, entry, nil
}

// AddFeedEntry records feed purchased for or transferred to and from a batch.
func (s *Service) AddFeedEntry(ctx context.Context, batchID string, in models.FeedEntry, addedBy string) (models.Batch, models.FeedEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if entry.EntryType == "" {
		entry.EntryType = models.FeedPurchase
	}
	if entry.BagQuantity == 0 {
		entry.BagQuantity = s.calc.Rules().FeedBagWeightKg
	}
	if err := validateFeed(entry); err != nil {
		return models.Batch{}, models.FeedEntry{}, err
	}

	bags := decimal.NewFromFloat(entry.NumberOfBags)
	entry.TotalWeight = bags.Mul(decimal.NewFromFloat(entry.BagQuantity)).Round(2).InexactFloat64()
	amount := bags.Mul(decimal.NewFromFloat(entry.Price)).Sub(decimal.NewFromFloat(entry.Discount))
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	entry.TotalAmount = amount.Round(2).InexactFloat64()

	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		switch entry.EntryType {
		case models.FeedTransferOut:
			if entry.NumberOfBags > b.FeedStock {
				return fmt.Errorf("%w: transferring %.2f bags, %.2f in stock", ErrInvalidEntry, entry.NumberOfBags, b.FeedStock)
			}
			b.FeedStock = subFloor(b.FeedStock, entry.NumberOfBags)
		default:
			b.FeedStock = addFloat(b.FeedStock, entry.NumberOfBags)
		}

		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()
		b.FeedEntries = append(b.FeedEntries, entry)
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.FeedEntry{}, mapRepoError(batchID, err)
	}

	s.logger.Info("feed entry recorded",
		zap.String("batch", b.BatchCode),
		zap.String("type", string(entry.EntryType)),
		zap.Float64("bags", entry.NumberOfBags),
	)
	return b, entry, nil
}

// AddMedicineEntry records a vaccine or medicine issued to a batch.
func (s *Service) AddMedicineEntry(ctx context.Context, batchID string, in models.MedicineEntry, addedBy string) (models.Batch, models.MedicineEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	switch {
	case strings.TrimSpace(entry.MedicineName) == "" && strings.TrimSpace(entry.VaccineName) == "":
		return models.Batch{}, models.MedicineEntry{}, fmt.Errorf("%w: medicine or vaccine name is required", ErrInvalidEntry)
	case entry.Quantity <= 0:
		return models.Batch{}, models.MedicineEntry{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidEntry)
	case entry.Amount < 0:
		return models.Batch{}, models.MedicineEntry{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidEntry)
	}
	if err := checkDate(entry.Date); err != nil {
		return models.Batch{}, models.MedicineEntry{}, err
	}

	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()
		b.MedicineEntries = append(b.MedicineEntries, entry)
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.MedicineEntry{}, mapRepoError(batchID, err)
	}
	return b, entry, nil
}

// AddExpenseEntry books another cost against a batch.
func (s *Service) AddExpenseEntry(ctx context.Context, batchID string, in models.ExpenseEntry, addedBy string) (models.Batch, models.ExpenseEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if entry.PaymentMode == "" {
		entry.PaymentMode = models.PaymentCash
	}
	switch {
	case strings.TrimSpace(entry.Purpose) == "":
		return models.Batch{}, models.ExpenseEntry{}, fmt.Errorf("%w: purpose is required", ErrInvalidEntry)
	case entry.Amount <= 0:
		return models.Batch{}, models.ExpenseEntry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	switch entry.PaymentMode {
	case models.PaymentCash, models.PaymentBank, models.PaymentUPI:
	default:
		return models.Batch{}, models.ExpenseEntry{}, fmt.Errorf("%w: unknown payment mode %q", ErrInvalidEntry, entry.PaymentMode)
	}
	if err := checkDate(entry.Date); err != nil {
		return models.Batch{}, models.ExpenseEntry{}, err
	}

	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()
		b.ExpenseEntries = append(b.ExpenseEntries, entry)
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.ExpenseEntry{}, mapRepoError(batchID, err)
	}
	return b, entry, nil
}

// AddEggEntry records an egg sale. The total is eggs x rate.
func (s *Service) AddEggEntry(ctx context.Context, batchID string, in models.EggEntry, addedBy string) (models.Batch, models.EggEntry, error) {
	entry := in
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if entry.TransportType == "" {
		entry.TransportType = models.TransportCompany
	}
	switch {
	case entry.NumberOfEggs <= 0:
		return models.Batch{}, models.EggEntry{}, fmt.Errorf("%w: number of eggs must be positive", ErrInvalidEntry)
	case entry.Rate <= 0:
		return models.Batch{}, models.EggEntry{}, fmt.Errorf("%w: rate must be positive", ErrInvalidEntry)
	}
	if err := checkDate(entry.Date); err != nil {
		return models.Batch{}, models.EggEntry{}, err
	}
	entry.TotalAmount = decimal.NewFromInt(int64(entry.NumberOfEggs)).
		Mul(decimal.NewFromFloat(entry.Rate)).Round(2).InexactFloat64()

	b, err := s.repo.UpdateBatch(ctx, batchID, func(b *models.Batch) error {
		if !b.IsActive() {
			return ErrBatchCompleted
		}
		entry.ID = s.newID()
		entry.BatchID = b.ID
		entry.AddedBy = addedBy
		entry.Timestamp = s.now().UTC()
		b.EggEntries = append(b.EggEntries, entry)
		s.recompute(b)
		return nil
	})
	if err != nil {
		return models.Batch{}, models.EggEntry{}, mapRepoError(batchID, err)
	}
	return b, entry, nil
}

// recompute refreshes the figures derived from the entry logs: mortality,
// weight, FCR, gross, production cost and the settled farmer share.
func (s *Service) recompute(b *models.Batch) {
	s.calc.Refresh(b)
}

func validateDaily(e models.DailyEntry) error {
	switch {
	case e.Mortality < 0 || e.WeakBirds < 0 || e.LegWeakBirds < 0:
		return fmt.Errorf("%w: bird counts must not be negative", ErrInvalidEntry)
	case e.FeedUsed < 0 || e.FeedBags < 0:
		return fmt.Errorf("%w: feed must not be negative", ErrInvalidEntry)
	case e.AvgWeight < 0:
		return fmt.Errorf("%w: average weight must not be negative", ErrInvalidEntry)
	case e.BirdAge < 0:
		return fmt.Errorf("%w: bird age must not be negative", ErrInvalidEntry)
	}
	return checkDate(e.Date)
}

func validateSale(e models.SalesEntry) error {
	switch {
	case e.Birds <= 0:
		return fmt.Errorf("%w: birds must be positive", ErrInvalidEntry)
	case e.AvgWeight <= 0:
		return fmt.Errorf("%w: average weight must be positive", ErrInvalidEntry)
	case e.PricePerKg <= 0:
		return fmt.Errorf("%w: price per kg must be positive", ErrInvalidEntry)
	case e.TransportAmount < 0:
		return fmt.Errorf("%w: transport amount must not be negative", ErrInvalidEntry)
	}
	switch e.TransportType {
	case models.TransportCompany, models.TransportCustomer:
	default:
		return fmt.Errorf("%w: unknown transport type %q", ErrInvalidEntry, e.TransportType)
	}
	return checkDate(e.Date)
}

func validateFeed(e models.FeedEntry) error {
	switch {
	case e.NumberOfBags <= 0:
		return fmt.Errorf("%w: number of bags must be positive", ErrInvalidEntry)
	case e.BagQuantity <= 0:
		return fmt.Errorf("%w: bag quantity must be positive", ErrInvalidEntry)
	case e.Price < 0 || e.Discount < 0:
		return fmt.Errorf("%w: price and discount must not be negative", ErrInvalidEntry)
	}
	switch e.EntryType {
	case models.FeedPurchase, models.FeedTransferIn, models.FeedTransferOut:
	default:
		return fmt.Errorf("%w: unknown feed entry type %q", ErrInvalidEntry, e.EntryType)
	}
	return checkDate(e.Date)
}

func checkDate(value string) error {
	if _, err := models.ParseDate(value); err != nil {
		return fmt.Errorf("%w: date %q: %v", ErrInvalidEntry, value, err)
	}
	return nil
}

func addFloat(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func subFloor(a, b float64) float64 {
	out := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
	if out.IsNegative() {
		return 0
	}
	return out.Round(2).InexactFloat64()
}
