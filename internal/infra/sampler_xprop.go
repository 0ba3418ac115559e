package infra

import (
	"context"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// XpropSampler implements domain.Sampler and domain.DesktopResolver by
// shelling out to xprop. Slower than the native connection (two subprocesses
// per sample) but works anywhere the tool does.
type XpropSampler struct{}

// NewXpropSampler creates the xprop-based sampler.
func NewXpropSampler() *XpropSampler {
	return &XpropSampler{}
}

// FocusedApp returns the identifier of the application holding input focus.
func (s *XpropSampler) FocusedApp(ctx context.Context) (domain.Observation, error) {
	out, err := runXprop(ctx, "-root", "_NET_ACTIVE_WINDOW")
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryActiveWindow, err)
	}
	windowID, err := parseActiveWindowID(out)
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryActiveWindow, err)
	}

	out, err = runXprop(ctx, "-id", windowID, "WM_CLASS")
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryWMClass, err)
	}
	name, err := parseWMClassInstance(out)
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryWMClass, err)
	}

	return domain.Observation{App: name, WindowID: windowID}, nil
}

// DesktopPath returns the _BAMF_DESKTOP_FILE property of the window.
func (s *XpropSampler) DesktopPath(ctx context.Context, windowID string) (string, error) {
	out, err := runXprop(ctx, "-id", windowID, "_BAMF_DESKTOP_FILE")
	if err != nil {
		return "", domain.NewSampleError(domain.QueryDesktopPath, err)
	}
	path, err := parseDesktopPath(out)
	if err != nil {
		return "", domain.NewSampleError(domain.QueryDesktopPath, err)
	}
	return path, nil
}

func runXprop(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "xprop", args...).Output()
	if err != nil {
		return "", errors.Wrap(err, "xprop failed")
	}
	if !utf8.Valid(out) {
		return "", errors.New("xprop produced non-UTF-8 output")
	}
	return string(out), nil
}

// parseActiveWindowID extracts the window handle from a reply like
// "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3200042".
func parseActiveWindowID(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", errors.New("empty active window reply")
	}

	id := fields[len(fields)-1]
	if !strings.HasPrefix(id, "0x") {
		return "", errors.Errorf("malformed active window reply %q", strings.TrimSpace(out))
	}
	if id == "0x0" {
		return "", errors.New("no window focused")
	}
	return id, nil
}

// parseWMClassInstance extracts the first quoted value, the instance name,
// from a reply like `WM_CLASS(STRING) = "chromium", "Chromium"`.
func parseWMClassInstance(out string) (string, error) {
	_, rest, ok := strings.Cut(out, "=")
	if !ok {
		return "", errors.Errorf("malformed WM_CLASS reply %q", strings.TrimSpace(out))
	}
	instance, _, ok := strings.Cut(rest, ",")
	if !ok {
		return "", errors.Errorf("malformed WM_CLASS reply %q", strings.TrimSpace(out))
	}

	name := strings.Trim(strings.TrimSpace(instance), `"`)
	if name == "" {
		return "", errors.New("window reports an empty WM_CLASS instance")
	}
	return name, nil
}

// parseDesktopPath extracts the quoted path from a reply like
// `_BAMF_DESKTOP_FILE(STRING) = "/usr/share/applications/chromium.desktop"`.
func parseDesktopPath(out string) (string, error) {
	_, rest, ok := strings.Cut(out, "=")
	if !ok {
		return "", errors.Errorf("malformed desktop entry reply %q", strings.TrimSpace(out))
	}

	path := strings.Trim(strings.TrimSpace(rest), `"`)
	if path == "" {
		return "", errors.New("window advertises no desktop entry")
	}
	return path, nil
}

// Ensure XpropSampler implements both sampling ports.
var (
	_ domain.Sampler         = (*XpropSampler)(nil)
	_ domain.DesktopResolver = (*XpropSampler)(nil)
)
