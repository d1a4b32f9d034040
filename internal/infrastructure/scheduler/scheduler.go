// Package scheduler runs recurring maintenance jobs such as the nightly
// invoice backfill. Jobs run once per day at a configured time; a manual
// trigger is available for operational use.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the status of the most recent run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of recurring maintenance work
type Job interface {
	// Name identifies the job in logs and run records
	Name() string

	// Run executes the job. Errors are recorded but never stop the scheduler.
	Run(ctx context.Context) error
}

// JobRecord captures the outcome of a job's most recent run
type JobRecord struct {
	Name        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Config holds the maintenance scheduler configuration
type Config struct {
	// DailyHour and DailyMinute give the local time of the daily run (24h clock)
	DailyHour   int
	DailyMinute int

	// CheckInterval is how often the loop checks whether it is time to run
	CheckInterval time.Duration

	// JobTimeout bounds a single job execution
	JobTimeout time.Duration
}

// DefaultConfig returns the default maintenance scheduler configuration
func DefaultConfig() Config {
	return Config{
		DailyHour:     2, // 2am, outside business hours
		DailyMinute:   0,
		CheckInterval: time.Minute,
		JobTimeout:    10 * time.Minute,
	}
}

// MaintenanceScheduler runs registered jobs once per day.
type MaintenanceScheduler struct {
	config Config
	jobs   []Job
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // date of the last daily run, to avoid double-firing
	records     map[string]*JobRecord
}

// NewMaintenanceScheduler creates a scheduler with the given jobs
func NewMaintenanceScheduler(config Config, logger *zap.Logger, jobs ...Job) *MaintenanceScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 10 * time.Minute
	}

	records := make(map[string]*JobRecord, len(jobs))
	for _, job := range jobs {
		records[job.Name()] = &JobRecord{Name: job.Name(), Status: JobStatusPending}
	}

	return &MaintenanceScheduler{
		config:  config,
		jobs:    jobs,
		logger:  logger,
		records: records,
	}
}

// Start starts the scheduler loop
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Maintenance scheduler started",
		zap.Int("daily_hour", s.config.DailyHour),
		zap.Int("daily_minute", s.config.DailyMinute),
		zap.Int("job_count", len(s.jobs)),
	)

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *MaintenanceScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes all jobs immediately, outside the daily window
func (s *MaintenanceScheduler) RunNow(ctx context.Context) {
	s.runJobs(ctx)
}

// Records returns a snapshot of the most recent run outcome per job
func (s *MaintenanceScheduler) Records() []JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobRecord, 0, len(s.records))
	for _, job := range s.jobs {
		if rec, ok := s.records[job.Name()]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// runLoop checks periodically whether it is time for the daily run
func (s *MaintenanceScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun fires the daily run at most once per date
func (s *MaintenanceScheduler) checkAndRun(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	if s.lastRunDate == currentDate {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if now.Hour() != s.config.DailyHour || now.Minute() != s.config.DailyMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.logger.Info("Starting daily maintenance run", zap.String("date", currentDate))
	s.runJobs(ctx)
}

// runJobs executes every job in order, recording each outcome
func (s *MaintenanceScheduler) runJobs(ctx context.Context) {
	for _, job := range s.jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.runJob(ctx, job)
	}
}

func (s *MaintenanceScheduler) runJob(ctx context.Context, job Job) {
	started := time.Now()

	s.mu.Lock()
	rec := s.records[job.Name()]
	rec.Status = JobStatusRunning
	rec.Error = ""
	rec.StartedAt = &started
	rec.CompletedAt = nil
	s.mu.Unlock()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := job.Run(jobCtx)
	cancel()

	completed := time.Now()

	s.mu.Lock()
	rec.CompletedAt = &completed
	if err != nil {
		rec.Status = JobStatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = JobStatusSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Maintenance job failed",
			zap.String("job", job.Name()),
			zap.Duration("duration", completed.Sub(started)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Maintenance job completed",
		zap.String("job", job.Name()),
		zap.Duration("duration", completed.Sub(started)),
	)
}
