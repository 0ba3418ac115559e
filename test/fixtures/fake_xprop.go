package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
)

// FakeXprop installs a stand-in xprop executable that replies with canned
// window properties, letting the fallback sampler run without an X server.
type FakeXprop struct {
	Dir         string
	WindowID    string
	Instance    string
	Class       string
	DesktopFile string
}

// NewFakeXprop creates a fake xprop generator with a plausible default window.
func NewFakeXprop(dir string) *FakeXprop {
	return &FakeXprop{
		Dir:         dir,
		WindowID:    "0x3200007",
		Instance:    "chromium",
		Class:       "Chromium",
		DesktopFile: "/usr/share/applications/chromium.desktop",
	}
}

// Install writes the fake tool into Dir. Prepend Dir to PATH so it shadows
// the real xprop.
func (f *FakeXprop) Install() error {
	script := fmt.Sprintf(`#!/bin/sh
case "$*" in
  "-root _NET_ACTIVE_WINDOW")
    echo '_NET_ACTIVE_WINDOW(WINDOW): window id # %s'
    ;;
  "-id %s WM_CLASS")
    echo 'WM_CLASS(STRING) = "%s", "%s"'
    ;;
  "-id %s _BAMF_DESKTOP_FILE")
    echo '_BAMF_DESKTOP_FILE(STRING) = "%s"'
    ;;
  *)
    echo "xprop: no such property" >&2
    exit 1
    ;;
esac
`, f.WindowID, f.WindowID, f.Instance, f.Class, f.WindowID, f.DesktopFile)

	return os.WriteFile(f.Path(), []byte(script), 0755)
}

// Path returns where the fake tool lives.
func (f *FakeXprop) Path() string {
	return filepath.Join(f.Dir, "xprop")
}
