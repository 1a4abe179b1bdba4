package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

type fakeJobs struct {
	exports, sweeps int
	digest          string
	err             error
	sent            []models.OutboundMessageRequest
}

func (f *fakeJobs) Export(context.Context) (int, error) {
	f.exports++
	return 2, f.err
}

func (f *fakeJobs) Sweep(context.Context) (int, error) {
	f.sweeps++
	return 1, f.err
}

func (f *fakeJobs) WeeklyDigest(context.Context, time.Time) (string, error) {
	return f.digest, f.err
}

func (f *fakeJobs) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func testConfig() config.ReportingConfig {
	return config.ReportingConfig{
		SnapshotSchedule: "0 20 * * *",
		SweepSchedule:    "0 8 * * *",
		DigestSchedule:   "0 20 * * 5",
		Timezone:         "Asia/Kolkata",
	}
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"
	_, err := NewScheduler(cfg, "", nil)
	assert.Error(t, err)
}

func TestAddJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), "919000000001", nil)
	require.NoError(t, err)

	jobs := &fakeJobs{}
	require.NoError(t, s.AddSnapshotJob(jobs))
	require.NoError(t, s.AddSweepJob(jobs))
	require.NoError(t, s.AddDigestJob(jobs, jobs))
	assert.Equal(t, 3, s.Jobs())
}

func TestAddJobSkipsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.SweepSchedule = ""
	s, err := NewScheduler(cfg, "", nil)
	require.NoError(t, err)

	jobs := &fakeJobs{}
	require.NoError(t, s.AddSweepJob(jobs))
	require.NoError(t, s.AddDigestJob(jobs, jobs))
	assert.Zero(t, s.Jobs())
}

func TestAddJobInvalidSpec(t *testing.T) {
	cfg := testConfig()
	cfg.SnapshotSchedule = "every night"
	s, err := NewScheduler(cfg, "", nil)
	require.NoError(t, err)

	assert.Error(t, s.AddSnapshotJob(&fakeJobs{}))
}

func TestRunJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), "919000000001", nil)
	require.NoError(t, err)
	ctx := context.Background()

	jobs := &fakeJobs{digest: "Weekly summary"}
	s.runSnapshot(ctx, jobs)
	s.runSweep(ctx, jobs)
	s.runDigest(ctx, jobs, jobs)

	assert.Equal(t, 1, jobs.exports)
	assert.Equal(t, 1, jobs.sweeps)
	require.Len(t, jobs.sent, 1)
	assert.Equal(t, "919000000001", jobs.sent[0].To)
	assert.Equal(t, "Weekly summary", jobs.sent[0].Message)
}

func TestRunDigestFailureSendsNothing(t *testing.T) {
	s, err := NewScheduler(testConfig(), "919000000001", nil)
	require.NoError(t, err)

	jobs := &fakeJobs{err: errors.New("store unavailable")}
	s.runDigest(context.Background(), jobs, jobs)
	assert.Empty(t, jobs.sent)
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(testConfig(), "", nil)
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
