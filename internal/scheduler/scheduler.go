package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// Exporter takes and stores the nightly batch snapshot.
type Exporter interface {
	Export(ctx context.Context) (int, error)
}

// Sweeper checks active batches against the mortality threshold.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Digester renders the weekly summary.
type Digester interface {
	WeeklyDigest(ctx context.Context, now time.Time) (string, error)
}

// Notifier delivers a message to the manager.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.ReportingConfig
	managerID string
	location  *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// Standard five-field cron expressions are expected.
func NewScheduler(cfg config.ReportingConfig, managerID string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		cfg:       cfg,
		managerID: managerID,
		location:  loc,
		logger:    logger,
	}, nil
}

// AddSnapshotJob schedules the nightly snapshot export.
func (s *Scheduler) AddSnapshotJob(exp Exporter) error {
	return s.add("snapshot", s.cfg.SnapshotSchedule, func(ctx context.Context) {
		s.runSnapshot(ctx, exp)
	})
}

// AddSweepJob schedules the mortality sweep.
func (s *Scheduler) AddSweepJob(sw Sweeper) error {
	return s.add("mortality_sweep", s.cfg.SweepSchedule, func(ctx context.Context) {
		s.runSweep(ctx, sw)
	})
}

// AddDigestJob schedules the weekly digest to the manager. It is skipped
// when no manager number is configured.
func (s *Scheduler) AddDigestJob(d Digester, n Notifier) error {
	if s.managerID == "" {
		s.logger.Warn("manager number missing, weekly digest disabled")
		return nil
	}
	return s.add("weekly_digest", s.cfg.DigestSchedule, func(ctx context.Context) {
		s.runDigest(ctx, d, n)
	})
}

// add registers job under spec. An empty spec disables the job.
func (s *Scheduler) add(name, spec string, job func(ctx context.Context)) error {
	if spec == "" {
		s.logger.Info("job disabled", zap.String("job", name))
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s job %q: %w", name, spec, err)
	}

	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec), zap.String("timezone", s.location.String()))
	return nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", s.Jobs()))
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSnapshot(ctx context.Context, exp Exporter) {
	n, err := exp.Export(ctx)
	if err != nil {
		s.logger.Error("snapshot export failed", zap.Int("batches", n), zap.Error(err))
		return
	}
	s.logger.Info("snapshot export finished", zap.Int("batches", n))
}

func (s *Scheduler) runSweep(ctx context.Context, sw Sweeper) {
	n, err := sw.Sweep(ctx)
	if err != nil {
		s.logger.Error("mortality sweep failed", zap.Int("alerts", n), zap.Error(err))
		return
	}
	s.logger.Info("mortality sweep finished", zap.Int("alerts", n))
}

func (s *Scheduler) runDigest(ctx context.Context, d Digester, n Notifier) {
	digest, err := d.WeeklyDigest(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate weekly digest", zap.Error(err))
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.managerID,
		Message: digest,
	}

	if err := n.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send weekly digest", zap.Error(err))
	} else {
		s.logger.Info("weekly digest sent successfully")
	}
}
