package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/application/invoicing"
)

type fakeJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run(ctx context.Context) error {
	f.runs.Add(1)
	return f.err
}

func TestMaintenanceScheduler_RunNow(t *testing.T) {
	job := &fakeJob{name: "test_job"}
	s := NewMaintenanceScheduler(DefaultConfig(), zap.NewNop(), job)

	s.RunNow(context.Background())

	assert.Equal(t, int32(1), job.runs.Load())

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "test_job", records[0].Name)
	assert.Equal(t, JobStatusSuccess, records[0].Status)
	assert.NotNil(t, records[0].StartedAt)
	assert.NotNil(t, records[0].CompletedAt)
}

func TestMaintenanceScheduler_FailedJobDoesNotStopOthers(t *testing.T) {
	failing := &fakeJob{name: "failing_job", err: errors.New("boom")}
	healthy := &fakeJob{name: "healthy_job"}
	s := NewMaintenanceScheduler(DefaultConfig(), zap.NewNop(), failing, healthy)

	s.RunNow(context.Background())

	assert.Equal(t, int32(1), failing.runs.Load())
	assert.Equal(t, int32(1), healthy.runs.Load())

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, JobStatusFailed, records[0].Status)
	assert.Equal(t, "boom", records[0].Error)
	assert.Equal(t, JobStatusSuccess, records[1].Status)
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	job := &fakeJob{name: "idle_job"}
	cfg := DefaultConfig()
	cfg.CheckInterval = 10 * time.Millisecond

	s := NewMaintenanceScheduler(cfg, zap.NewNop(), job)

	require.NoError(t, s.Start(context.Background()))
	// Starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))

	// Stopping twice is a no-op
	require.NoError(t, s.Stop(stopCtx))
}

func TestMaintenanceScheduler_RecordsStartPending(t *testing.T) {
	job := &fakeJob{name: "pending_job"}
	s := NewMaintenanceScheduler(DefaultConfig(), zap.NewNop(), job)

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, JobStatusPending, records[0].Status)
	assert.Nil(t, records[0].StartedAt)
}

type fakeBackfiller struct {
	result  *invoicing.BackfillResponse
	err     error
	actorID string
}

func (f *fakeBackfiller) GenerateMissing(ctx context.Context, actorID string) (*invoicing.BackfillResponse, error) {
	f.actorID = actorID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestInvoiceBackfillJob_Run(t *testing.T) {
	backfiller := &fakeBackfiller{
		result: &invoicing.BackfillResponse{
			Scanned: 10,
			Created: []uuid.UUID{uuid.New(), uuid.New()},
			Skipped: 8,
		},
	}
	job := NewInvoiceBackfillJob(backfiller, zap.NewNop())

	assert.Equal(t, "invoice_backfill", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "system:scheduler", backfiller.actorID)
}

func TestInvoiceBackfillJob_PropagatesError(t *testing.T) {
	backfiller := &fakeBackfiller{err: errors.New("db down")}
	job := NewInvoiceBackfillJob(backfiller, zap.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
