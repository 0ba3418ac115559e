// Package daemon implements the long-lived sampling loop.
package daemon

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// TrackerConfig holds tracker daemon configuration.
type TrackerConfig struct {
	SampleInterval time.Duration // How often to sample focus (default 10s)
	GapTolerance   time.Duration // Largest gap still counting as continuous focus
}

// DefaultTrackerConfig returns default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		SampleInterval: 10 * time.Second,
		GapTolerance:   50 * time.Second,
	}
}

// trackerState is everything the loop carries between cycles: the frame the
// previous cycle tracked and the day the writer is bound to. Nothing else in
// the process holds sampling state.
type trackerState struct {
	lastFrame *domain.Frame
	day       time.Time
}

// Tracker samples the focused application on a fixed interval and feeds each
// observation through the recorder. One goroutine owns the whole pipeline;
// every error inside a cycle is classified here, logged, and survived.
type Tracker struct {
	config    TrackerConfig
	recorder  domain.Recorder
	writer    domain.FrameWriter
	retention domain.Retention
	logger    *zap.Logger
	state     trackerState
}

// NewTracker creates a tracker bound to the writer's current day.
func NewTracker(
	config TrackerConfig,
	recorder domain.Recorder,
	writer domain.FrameWriter,
	retention domain.Retention,
	logger *zap.Logger,
) *Tracker {
	return &Tracker{
		config:    config,
		recorder:  recorder,
		writer:    writer,
		retention: retention,
		logger:    logger,
		state:     trackerState{day: writer.Day()},
	}
}

// Run starts the sampling loop. This blocks until context is canceled.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info("tracker started",
		zap.Duration("interval", t.config.SampleInterval),
		zap.Duration("tolerance", t.config.GapTolerance))

	// Sample immediately; the first tick is an interval away.
	t.cycle(ctx, time.Now())

	ticker := time.NewTicker(t.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("tracker stopping")
			return ctx.Err()

		case <-ticker.C:
			t.cycle(ctx, time.Now())
		}
	}
}

// cycle runs one sampling step: rotate the log at day boundaries, then
// sample, decide and persist.
func (t *Tracker) cycle(ctx context.Context, now time.Time) {
	if !sameDay(now, t.state.day) {
		if !t.rollover(now) {
			return
		}
	}

	frame, err := t.recorder.RecordSample(ctx, t.state.lastFrame, now.Unix())
	if err != nil {
		t.handleCycleError(err)
		return
	}
	t.state.lastFrame = frame
}

// rollover switches the writer to the new day and sweeps expired logs.
// On failure the cycle is skipped so no record lands in the previous day's
// file; the next tick retries.
func (t *Tracker) rollover(now time.Time) bool {
	t.logger.Info("day changed, rotating log",
		zap.String("from", t.state.day.Format("2006-01-02")),
		zap.String("to", now.Format("2006-01-02")))

	t.state.lastFrame = nil

	if err := t.writer.Rollover(now); err != nil {
		t.logger.Error("log rotation failed, skipping cycle", zap.Error(err))
		return false
	}
	t.state.day = t.writer.Day()

	if removed, err := t.retention.Sweep(now); err != nil {
		t.logger.Warn("retention sweep failed", zap.Error(err))
	} else if len(removed) > 0 {
		t.logger.Info("retention sweep completed", zap.Int("removed", len(removed)))
	}

	return true
}

// handleCycleError is the loop's single error classification point. Every
// failure is recoverable: log it by kind, drop the continuity state so no
// frame spans the trouble, and let the next tick start fresh.
func (t *Tracker) handleCycleError(err error) {
	var sampleErr *domain.SampleError
	switch {
	case errors.As(err, &sampleErr):
		t.logger.Warn("sampling failed",
			zap.String("query", sampleErr.Query),
			zap.Error(sampleErr.Err))
	case errors.Is(err, domain.ErrLogDesync):
		t.logger.Error("day log desynced, abandoning open frame", zap.Error(err))
	case errors.Is(err, domain.ErrBadName):
		t.logger.Warn("unrepresentable identifier skipped", zap.Error(err))
	default:
		t.logger.Error("cycle failed", zap.Error(err))
	}

	t.state.lastFrame = nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
