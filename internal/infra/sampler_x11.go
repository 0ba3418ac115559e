package infra

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

var x11AtomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"WM_CLASS",
	"_NET_WM_PID",
	"_BAMF_DESKTOP_FILE",
}

// X11Sampler implements domain.Sampler and domain.DesktopResolver over a
// persistent X connection. The application identifier is the WM_CLASS
// instance name; windows without one fall back to the owning process name
// via _NET_WM_PID.
type X11Sampler struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewX11Sampler connects to the X server named by DISPLAY. It fails when no
// display is reachable, in which case the caller can fall back to xprop.
func NewX11Sampler() (*X11Sampler, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	s := &X11Sampler{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom, len(x11AtomNames)),
	}

	for _, name := range x11AtomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		s.atoms[name] = reply.Atom
	}

	return s, nil
}

// FocusedApp returns the identifier of the application holding input focus.
func (s *X11Sampler) FocusedApp(ctx context.Context) (domain.Observation, error) {
	win, err := s.activeWindow()
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryActiveWindow, err)
	}

	name, err := s.windowApp(win)
	if err != nil {
		return domain.Observation{}, domain.NewSampleError(domain.QueryWMClass, err)
	}

	return domain.Observation{
		App:      name,
		WindowID: fmt.Sprintf("0x%x", uint32(win)),
	}, nil
}

// DesktopPath returns the _BAMF_DESKTOP_FILE property of the window.
func (s *X11Sampler) DesktopPath(ctx context.Context, windowID string) (string, error) {
	id, err := strconv.ParseUint(windowID, 0, 32)
	if err != nil {
		return "", domain.NewSampleError(domain.QueryDesktopPath,
			errors.Wrapf(err, "bad window id %q", windowID))
	}

	data, err := s.getProperty(xproto.Window(id), "_BAMF_DESKTOP_FILE", xproto.AtomString, 256)
	if err != nil {
		return "", domain.NewSampleError(domain.QueryDesktopPath, err)
	}

	path := strings.TrimRight(string(data), "\x00")
	if path == "" {
		return "", domain.NewSampleError(domain.QueryDesktopPath,
			errors.New("window advertises no desktop entry"))
	}
	return path, nil
}

// Close shuts down the X connection.
func (s *X11Sampler) Close() error {
	s.conn.Close()
	return nil
}

func (s *X11Sampler) activeWindow() (xproto.Window, error) {
	data, err := s.getProperty(s.root, "_NET_ACTIVE_WINDOW", xproto.AtomWindow, 1)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, errors.New("window manager reports no active window")
	}

	win := xproto.Window(binary.LittleEndian.Uint32(data))
	if win == 0 {
		return 0, errors.New("no window focused")
	}
	return win, nil
}

func (s *X11Sampler) windowApp(win xproto.Window) (string, error) {
	data, err := s.getProperty(win, "WM_CLASS", xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		// WM_CLASS is two NUL-terminated strings: instance, then class.
		instance := strings.SplitN(strings.TrimRight(string(data), "\x00"), "\x00", 2)[0]
		if instance != "" {
			if !utf8.ValidString(instance) {
				return "", errors.New("WM_CLASS is not valid UTF-8")
			}
			return instance, nil
		}
	}

	// Some windows (Java AWT, overlays) carry no WM_CLASS; identify them by
	// the owning process instead.
	pid, pidErr := s.windowPID(win)
	if pidErr != nil {
		return "", errors.New("window has no WM_CLASS and no _NET_WM_PID")
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", errors.Wrapf(err, "window owner pid %d not found", pid)
	}
	name, err := proc.Name()
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve name of pid %d", pid)
	}
	return name, nil
}

func (s *X11Sampler) windowPID(win xproto.Window) (uint32, error) {
	data, err := s.getProperty(win, "_NET_WM_PID", xproto.AtomCardinal, 1)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, errors.New("window advertises no _NET_WM_PID")
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (s *X11Sampler) getProperty(win xproto.Window, atomName string, typ xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(s.conn, false, win, s.atoms[atomName], typ, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// Ensure X11Sampler implements both sampling ports.
var (
	_ domain.Sampler         = (*X11Sampler)(nil)
	_ domain.DesktopResolver = (*X11Sampler)(nil)
)
