package domain

// OpKind enumerates what a sampling cycle decided to do with the day log.
type OpKind int

const (
	// OpPrepare starts a fresh unconfirmed frame. Nothing is written.
	OpPrepare OpKind = iota + 1

	// OpWriteNew appends the frame as a complete new record.
	OpWriteNew

	// OpUpdatePrevious rewrites the end timestamp of the last written record.
	OpUpdatePrevious
)

func (k OpKind) String() string {
	switch k {
	case OpPrepare:
		return "prepare"
	case OpWriteNew:
		return "write-new"
	case OpUpdatePrevious:
		return "update-previous"
	default:
		return "unknown"
	}
}

// Operation is the outcome of one continuity decision: the kind of write to
// perform and the frame that becomes the loop's new state. Gap carries the
// elapsed seconds since the previous sample when it exceeded the tolerance
// (or was negative after a clock step); it is zero otherwise.
type Operation struct {
	Kind  OpKind
	Frame Frame
	Gap   int64
}
