// Package policy decides which observed applications are excluded from the log.
// Desktop shells and panels grab focus constantly without being something the
// user actually works in, so recording them would drown the log in noise.
package policy

import (
	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// DefaultIgnoredNames are desktop surfaces that take focus between real
// application switches.
var DefaultIgnoredNames = []string{
	"Desktop",
	"unity-panel",
	"wingpanel",
}

// IgnoreList filters identifiers by exact name plus a length heuristic:
// anything of one character or less is a mis-parse, not an application.
type IgnoreList struct {
	names map[string]struct{}
}

var _ domain.IgnorePolicy = (*IgnoreList)(nil)

// NewIgnoreList builds a list that ignores exactly the given names.
func NewIgnoreList(names ...string) *IgnoreList {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &IgnoreList{names: set}
}

// DefaultIgnoreList returns the list used by the daemon.
func DefaultIgnoreList() *IgnoreList {
	return NewIgnoreList(DefaultIgnoredNames...)
}

// Ignored reports whether the identifier should be discarded.
func (l *IgnoreList) Ignored(name string) bool {
	if len(name) <= 1 {
		return true
	}
	_, ok := l.names[name]
	return ok
}
