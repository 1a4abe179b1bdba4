package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

type fakeStore struct {
	saved []models.BatchSnapshot
	err   error
}

func (f *fakeStore) SaveSnapshots(_ context.Context, s []models.BatchSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s...)
	return nil
}

type fakeSheet struct {
	rows   [][]interface{}
	header bool
}

func (f *fakeSheet) AppendRows(_ context.Context, _ string, rows [][]interface{}) error {
	f.rows = append(f.rows, rows...)
	f.header = true
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	if f.header {
		return [][]interface{}{{"Taken At"}}, nil
	}
	return nil, nil
}

var testNow = time.Date(2024, time.April, 20, 20, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store SnapshotStore, sheet SheetWriter) *Service {
	t.Helper()
	mem := memory.NewStore()
	require.NoError(t, memory.SeedSampleData(context.Background(), mem, nil, ""))
	calc := metrics.NewCalculator(config.DefaultRules())
	svc := NewService(batches.NewService(mem, mem, calc, nil), calc, store, sheet, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSnapshots(t *testing.T) {
	svc := newTestService(t, nil, nil)

	snaps, err := svc.Snapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	first := snaps[0]
	assert.Equal(t, "B2024-001", first.BatchCode)
	assert.Equal(t, "Rajesh Kumar", first.FarmerName)
	assert.Equal(t, 4492, first.CurrentBirds)
	assert.Equal(t, 8, first.TotalMortality)
	assert.Equal(t, 150000.0, first.SalesRevenue)
	assert.Equal(t, 89000.0, first.FeedCost)
	assert.Equal(t, testNow, first.CreatedAt)
}

func TestExport(t *testing.T) {
	store := &fakeStore{}
	sheet := &fakeSheet{}
	svc := newTestService(t, store, sheet)

	n, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.saved, 2)
	require.Len(t, sheet.rows, 3)
	assert.Equal(t, SnapshotHeader, sheet.rows[0])
	assert.Equal(t, "B2024-001", sheet.rows[1][1])

	_, err = svc.Export(context.Background())
	require.NoError(t, err)
	assert.Len(t, sheet.rows, 5, "header written once")
}

func TestExportContinuesAfterBackendFailure(t *testing.T) {
	boom := errors.New("mongo down")
	sheet := &fakeSheet{}
	svc := newTestService(t, &fakeStore{err: boom}, sheet)

	_, err := svc.Export(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sheet.rows, 3)
}

func TestExportWithoutBackends(t *testing.T) {
	n, err := newTestService(t, nil, nil).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWeeklyDigest(t *testing.T) {
	svc := newTestService(t, nil, nil)

	digest, err := svc.WeeklyDigest(context.Background(), testNow)
	require.NoError(t, err)
	assert.Contains(t, digest, "Weekly summary (2024-04-14 to 2024-04-20)")
	assert.Contains(t, digest, "B2024-001 RK Farms: 4492 birds, 8 dead this week (2 reports)")
	assert.Contains(t, digest, "B2024-002 SP Poultry: 2694 birds, 6 dead this week (2 reports)")
	assert.Contains(t, digest, "Total: 2 active batches, 7186 birds, 14 deaths this week.")
	assert.NotContains(t, digest, "B2024-003")

	digest, err = svc.WeeklyDigest(context.Background(), testNow.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Contains(t, digest, "no daily entries")
}
