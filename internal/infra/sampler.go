package infra

import (
	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// NewSampler picks the best available sampler: the native X connection when
// a display is reachable, the xprop fallback otherwise. Both returned values
// are backed by the same sampler.
func NewSampler(logger *zap.Logger) (domain.Sampler, domain.DesktopResolver) {
	s, err := NewX11Sampler()
	if err == nil {
		logger.Info("using native X11 sampler")
		return s, s
	}

	logger.Warn("X connection failed, falling back to xprop", zap.Error(err))
	x := NewXpropSampler()
	return x, x
}
