package loader

import "github.com/larskrogh/cogviewer/internal/tilemath"

// State is a tile record's position in the lifecycle described by the
// spec's state machine: (none) -> Pending -> Loading -> Loaded|Error,
// with a zoom-triggered reset back to Pending and stale-generation
// completions discarded in place.
type State int

const (
	Pending State = iota
	Loading
	Loaded
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Record is a tile's lifecycle record: coordinate, key, current state,
// payload (once loaded), error (if failed), load timestamp (for fade) and
// the generation it was issued under.
type Record[T any] struct {
	Coord      tilemath.Coord
	Key        string
	State      State
	Payload    T
	Err        error
	LoadTimeMs int64
	Generation int64
}
