package loader

import "fmt"

// LoadError wraps whatever a LoadTile call surfaced for the current
// generation. It is stored in the tile record's Err field, never returned
// to the caller of a driver/renderer-facing method — spec §7 says tile
// load errors never interrupt control flow.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: load failed for %s: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
