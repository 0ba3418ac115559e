// Package usecase contains application business logic.
package usecase

import (
	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// Decide is the continuity engine: given the frame tracked by the previous
// cycle and a fresh observation, it picks the single log operation for this
// cycle. It is a pure function of its arguments.
//
// The rules, in order:
//
//  1. No previous frame, or a different application: prepare a fresh frame.
//     Nothing is written until the application is seen twice.
//  2. Same application but the elapsed time since the previous sample is
//     negative (clock stepped back) or at least the tolerance: the user was
//     away, so the old frame is abandoned and a fresh one prepared. The
//     already written record keeps its last confirmed end.
//  3. Same application within tolerance, frame not yet written: append it as
//     a new record spanning from its original start to now.
//  4. Same application within tolerance, record already written: extend the
//     record by rewriting its end timestamp in place.
func Decide(last *domain.Frame, name string, now int64, tolerance int64) domain.Operation {
	if last == nil || last.Name != name {
		return domain.Operation{
			Kind:  domain.OpPrepare,
			Frame: domain.Frame{Name: name, Start: now, End: now},
		}
	}

	elapsed := now - last.End
	if elapsed < 0 || elapsed >= tolerance {
		return domain.Operation{
			Kind:  domain.OpPrepare,
			Frame: domain.Frame{Name: name, Start: now, End: now},
			Gap:   elapsed,
		}
	}

	if !last.Confirmed() {
		return domain.Operation{
			Kind:  domain.OpWriteNew,
			Frame: domain.Frame{Name: name, Start: last.Start, End: now},
		}
	}

	return domain.Operation{
		Kind:  domain.OpUpdatePrevious,
		Frame: domain.Frame{Name: name, Start: last.Start, End: now},
	}
}
