// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"context"
	"errors"
	"sync"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// SampleStep is one scripted response of a ScriptedSampler.
type SampleStep struct {
	App      string
	WindowID string
	Err      error
}

// ScriptedSampler replays a fixed sequence of focus observations, standing
// in for the X11 sampler. After the last step it keeps returning that step,
// so a one-step script models an application holding focus.
type ScriptedSampler struct {
	mu    sync.Mutex
	steps []SampleStep
	next  int

	// DesktopPaths maps window ids to .desktop entry paths.
	DesktopPaths map[string]string
}

// NewScriptedSampler creates a sampler that replays the given steps.
func NewScriptedSampler(steps ...SampleStep) *ScriptedSampler {
	return &ScriptedSampler{steps: steps}
}

// FocusedApp returns the next scripted observation.
func (s *ScriptedSampler) FocusedApp(ctx context.Context) (domain.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return domain.Observation{}, domain.NewSampleError(domain.QueryActiveWindow, errors.New("no scripted steps"))
	}

	step := s.steps[s.next]
	if s.next < len(s.steps)-1 {
		s.next++
	}

	if step.Err != nil {
		return domain.Observation{}, step.Err
	}
	return domain.Observation{App: step.App, WindowID: step.WindowID}, nil
}

// DesktopPath resolves a window id against the DesktopPaths map.
func (s *ScriptedSampler) DesktopPath(ctx context.Context, windowID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path, ok := s.DesktopPaths[windowID]; ok {
		return path, nil
	}
	return "", domain.NewSampleError(domain.QueryDesktopPath, errors.New("no desktop entry for window"))
}

var (
	_ domain.Sampler         = (*ScriptedSampler)(nil)
	_ domain.DesktopResolver = (*ScriptedSampler)(nil)
)
