// Package worker runs scheduled privacy maintenance jobs.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/dsr"
	"github.com/tariffai/privacy-api/internal/share"
)

// DefaultShareGrace is how long expired share links are kept before the
// sweep removes their rows. Reads already refuse expired links; the grace
// keeps rows around long enough to investigate "my link stopped working"
// reports.
const DefaultShareGrace = 24 * time.Hour

// SweepJob expires stale data subject requests and prunes expired
// share links.
type SweepJob struct {
	config SweepConfig
	logger zerolog.Logger

	// Services (optional, nil disables the corresponding phase)
	dsrService   *dsr.Service
	shareService *share.Service

	// Metrics
	metrics *SweepMetrics
}

// SweepConfig holds configuration for the sweep job.
type SweepConfig struct {
	// ShareGrace delays share-row deletion past link expiry.
	ShareGrace time.Duration

	// ExpireRequests and PruneShares select which phases run.
	ExpireRequests bool
	PruneShares    bool
}

// DefaultSweepConfig returns the configuration used by the scheduled sweep.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ShareGrace:     DefaultShareGrace,
		ExpireRequests: true,
		PruneShares:    true,
	}
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalSweeps     int64
	FailedSweeps    int64
	ExpiredRequests int64
	PrunedShares    int64

	// Timings
	LastSweepAt       time.Time
	LastSweepDuration time.Duration
	TotalDuration     time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config       SweepConfig
	Logger       zerolog.Logger
	DSRService   *dsr.Service
	ShareService *share.Service
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	config := cfg.Config
	if config.ShareGrace <= 0 {
		config.ShareGrace = DefaultShareGrace
	}

	return &SweepJob{
		config:       config,
		logger:       cfg.Logger,
		dsrService:   cfg.DSRService,
		shareService: cfg.ShareService,
		metrics:      &SweepMetrics{},
	}
}

// SweepResult contains the result of a sweep run.
type SweepResult struct {
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	ExpiredRequests int
	PrunedShares    int
	Errors          []SweepError
}

// SweepError represents an error during a sweep phase.
type SweepError struct {
	Phase string
	Error string
}

// Run executes the sweep phases. A phase failure is recorded and the
// remaining phases still run; a partial sweep is better than none.
func (j *SweepJob) Run(ctx context.Context) *SweepResult {
	startTime := time.Now()
	result := &SweepResult{StartTime: startTime}

	j.logger.Info().
		Bool("expire_requests", j.config.ExpireRequests).
		Bool("prune_shares", j.config.PruneShares).
		Msg("starting privacy sweep job")

	if j.config.ExpireRequests && j.dsrService != nil {
		expired, err := j.dsrService.ExpireStale(ctx)
		if err != nil {
			result.Errors = append(result.Errors, SweepError{
				Phase: "expire_requests",
				Error: err.Error(),
			})
		} else {
			result.ExpiredRequests = expired
		}
	}

	if j.config.PruneShares && j.shareService != nil {
		pruned, err := j.shareService.PruneExpired(ctx, j.config.ShareGrace)
		if err != nil {
			result.Errors = append(result.Errors, SweepError{
				Phase: "prune_shares",
				Error: err.Error(),
			})
		} else {
			result.PrunedShares = pruned
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("expired_requests", result.ExpiredRequests).
		Int("pruned_shares", result.PrunedShares).
		Int("errors", len(result.Errors)).
		Msg("privacy sweep job completed")

	return result
}

func (j *SweepJob) updateMetrics(result *SweepResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalSweeps++
	if len(result.Errors) > 0 {
		j.metrics.FailedSweeps++
	}
	j.metrics.ExpiredRequests += int64(result.ExpiredRequests)
	j.metrics.PrunedShares += int64(result.PrunedShares)
	j.metrics.LastSweepAt = result.EndTime
	j.metrics.LastSweepDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SweepJob) GetMetrics() SweepMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SweepMetrics{
		TotalSweeps:       j.metrics.TotalSweeps,
		FailedSweeps:      j.metrics.FailedSweeps,
		ExpiredRequests:   j.metrics.ExpiredRequests,
		PrunedShares:      j.metrics.PrunedShares,
		LastSweepAt:       j.metrics.LastSweepAt,
		LastSweepDuration: j.metrics.LastSweepDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SweepJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_sweeps":        m.TotalSweeps,
		"failed_sweeps":       m.FailedSweeps,
		"expired_requests":    m.ExpiredRequests,
		"pruned_shares":       m.PrunedShares,
		"last_sweep_at":       m.LastSweepAt,
		"last_sweep_duration": m.LastSweepDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
