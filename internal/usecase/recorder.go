package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// RecorderImpl implements domain.Recorder.
type RecorderImpl struct {
	sampler   domain.Sampler
	resolver  domain.DesktopResolver // optional, may be nil
	writer    domain.FrameWriter
	appInfo   domain.AppInfoStore // optional, may be nil
	ignore    domain.IgnorePolicy
	tolerance int64 // seconds
	logger    *zap.Logger
}

// NewRecorder creates a recorder that samples via the given sampler and
// persists through the given writer. Tolerance is the largest gap between
// samples that still counts as continuous focus.
func NewRecorder(
	sampler domain.Sampler,
	resolver domain.DesktopResolver,
	writer domain.FrameWriter,
	appInfo domain.AppInfoStore,
	ignore domain.IgnorePolicy,
	tolerance time.Duration,
	logger *zap.Logger,
) domain.Recorder {
	return &RecorderImpl{
		sampler:   sampler,
		resolver:  resolver,
		writer:    writer,
		appInfo:   appInfo,
		ignore:    ignore,
		tolerance: int64(tolerance / time.Second),
		logger:    logger,
	}
}

// RecordSample observes the focused application and applies the resulting
// operation to the day log.
func (r *RecorderImpl) RecordSample(ctx context.Context, last *domain.Frame, now int64) (*domain.Frame, error) {
	obs, err := r.sampler.FocusedApp(ctx)
	if err != nil {
		return nil, err
	}

	if r.ignore.Ignored(obs.App) {
		r.logger.Debug("ignoring desktop surface", zap.String("app", obs.App))
		return nil, nil
	}

	r.logger.Debug("focused application", zap.String("app", obs.App))

	r.learnDesktopEntry(ctx, obs)

	op := Decide(last, obs.App, now, r.tolerance)
	if op.Gap != 0 {
		r.logger.Info("gap exceeded tolerance, starting new frame",
			zap.String("app", obs.App),
			zap.Int64("gap_seconds", op.Gap))
	}

	switch op.Kind {
	case domain.OpWriteNew:
		if err := r.writer.WriteNew(op.Frame); err != nil {
			return nil, err
		}
		r.logger.Info("frame committed",
			zap.String("app", op.Frame.Name),
			zap.Int64("start", op.Frame.Start),
			zap.Int64("end", op.Frame.End))
	case domain.OpUpdatePrevious:
		if err := r.writer.UpdatePrevious(op.Frame.End); err != nil {
			return nil, err
		}
	}

	frame := op.Frame
	return &frame, nil
}

// learnDesktopEntry records the window's .desktop path the first time an
// application shows up. Best effort: plenty of windows advertise no desktop
// entry at all, and the log record does not depend on it.
func (r *RecorderImpl) learnDesktopEntry(ctx context.Context, obs domain.Observation) {
	if r.appInfo == nil || r.resolver == nil || obs.WindowID == "" {
		return
	}
	if r.appInfo.Has(obs.App) {
		return
	}

	path, err := r.resolver.DesktopPath(ctx, obs.WindowID)
	if err != nil {
		r.logger.Debug("no desktop entry for window",
			zap.String("app", obs.App),
			zap.String("window", obs.WindowID),
			zap.Error(err))
		return
	}

	if err := r.appInfo.Learn(obs.App, path); err != nil {
		r.logger.Warn("failed to persist desktop entry",
			zap.String("app", obs.App),
			zap.Error(err))
		return
	}

	r.logger.Info("learned desktop entry",
		zap.String("app", obs.App),
		zap.String("path", path))
}

// Ensure RecorderImpl implements domain.Recorder.
var _ domain.Recorder = (*RecorderImpl)(nil)
