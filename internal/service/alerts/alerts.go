// Package alerts warns the farm manager over WhatsApp when a batch's
// mortality rate climbs above the configured threshold.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	client "github.com/mamadbah2/poultryops/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// BatchSource lists the batches a sweep inspects.
type BatchSource interface {
	Filter(ctx context.Context, q filter.Query) ([]models.Batch, error)
}

// Service sends at most one alert per batch per day.
type Service struct {
	client    client.Client
	managerID string
	threshold float64
	batches   BatchSource
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	alerted map[string]string
}

// NewService wires the alerter. threshold is a percentage (5 means 5 %).
func NewService(c client.Client, managerID string, threshold float64, batches BatchSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:    c,
		managerID: managerID,
		threshold: threshold,
		batches:   batches,
		logger:    logger,
		now:       time.Now,
		alerted:   make(map[string]string),
	}
}

// DailyEntryRecorded implements batches.DailyObserver.
func (s *Service) DailyEntryRecorded(ctx context.Context, b models.Batch, entry models.DailyEntry) {
	if _, err := s.Check(ctx, b); err != nil {
		s.logger.Error("mortality alert failed",
			zap.String("batch", b.BatchCode),
			zap.String("entry_id", entry.ID),
			zap.Error(err))
	}
}

// Check alerts on b when it is active and above the threshold. It reports
// whether a message was sent.
func (s *Service) Check(ctx context.Context, b models.Batch) (bool, error) {
	if !b.IsActive() || b.MortalityRate <= s.threshold {
		return false, nil
	}

	today := s.now().Format(models.DateLayout)
	s.mu.Lock()
	if s.alerted[b.ID] == today {
		s.mu.Unlock()
		return false, nil
	}
	s.alerted[b.ID] = today
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:   s.managerID,
		Body: Message(b, s.threshold),
	})
	if err != nil {
		s.mu.Lock()
		delete(s.alerted, b.ID)
		s.mu.Unlock()
		return false, fmt.Errorf("send mortality alert for %s: %w", b.BatchCode, err)
	}

	s.logger.Info("mortality alert sent",
		zap.String("batch", b.BatchCode),
		zap.Float64("mortality_rate", b.MortalityRate))
	return true, nil
}

// Sweep checks every active batch and returns how many alerts were sent.
// Failures on one batch do not stop the others; the first error is returned.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	active, err := s.batches.Filter(ctx, filter.Query{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list active batches: %w", err)
	}

	var (
		sent     int
		firstErr error
	)
	for _, b := range active {
		ok, err := s.Check(ctx, b)
		if err != nil {
			s.logger.Error("mortality sweep alert failed", zap.String("batch", b.BatchCode), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, firstErr
}

// Message is the alert text for b.
func Message(b models.Batch, threshold float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mortality alert: batch %s", b.BatchCode)
	if b.FarmName != "" {
		fmt.Fprintf(&sb, " (%s, %s)", b.FarmName, b.FarmerName)
	}
	fmt.Fprintf(&sb, "\nMortality rate %.2f%% exceeds %.2f%%.", b.MortalityRate, threshold)
	fmt.Fprintf(&sb, "\nDead: %d of %d birds, %d remaining.", b.TotalMortality, b.TotalBirds, b.CurrentBirds)
	if b.Supervisor != "" {
		fmt.Fprintf(&sb, "\nSupervisor: %s", b.Supervisor)
	}
	return sb.String()
}
