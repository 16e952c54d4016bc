// Package cogviewer is the orchestration layer binding a host's
// viewport/frame events to the tile loader: it is deliberately thin glue,
// not a renderer — the host owns the render loop and GPU upload, Session
// only owns when to enumerate, debounce, and start tile loads.
package cogviewer

import (
	"github.com/larskrogh/cogviewer/internal/cache"
	"github.com/larskrogh/cogviewer/internal/loader"
	"github.com/larskrogh/cogviewer/internal/tilemath"
)

// Config re-exports the loader's tunables so callers need only import
// this package for the common case.
type Config = loader.Config

// DefaultConfig returns the spec's default tuning.
func DefaultConfig() Config { return loader.DefaultConfig() }

// Record re-exports the loader's tile lifecycle record.
type Record[T any] = loader.Record[T]

// State re-exports the loader's tile lifecycle state.
type State = loader.State

const (
	Pending = loader.Pending
	Loading = loader.Loading
	Loaded  = loader.Loaded
	Error   = loader.Error
)

// Session binds viewport-change and per-frame tick events from a host
// (a map widget, a game engine's render loop, a test harness) to a
// Loader instance.
type Session[T any] struct {
	loader *loader.Loader[T]
}

// NewSession builds a Session around a fresh Loader. loadFn is the host's
// tile fetch/decode callback; opts configures size estimation and, in
// tests, the debounce clock.
func NewSession[T any](cfg Config, loadFn loader.LoadFunc[T], opts ...loader.Option[T]) *Session[T] {
	return &Session[T]{loader: loader.New(cfg, loadFn, opts...)}
}

// OnViewportChange is the host's pan/zoom callback: call it whenever the
// visible bounds or zoom level changes, as often as the host likes — the
// Session debounces internally.
func (s *Session[T]) OnViewportChange(bounds tilemath.Bounds, zoom int) {
	s.loader.UpdateViewport(bounds, zoom)
}

// Tick drives one frame: it starts as many queued loads as the configured
// per-frame cap allows. Call it once per render frame.
func (s *Session[T]) Tick() {
	s.loader.ProcessQueue()
}

// GetTile returns the current record for a "z/x/y" tile key.
func (s *Session[T]) GetTile(key string) (Record[T], bool) {
	return s.loader.GetTile(key)
}

// FindLoadedParent walks the ancestor chain of coord, returning the
// nearest Loaded tile a renderer can show in place of one still pending.
func (s *Session[T]) FindLoadedParent(coord tilemath.Coord) (Record[T], bool) {
	return s.loader.FindLoadedParent(coord)
}

// GetTileFadeAlpha returns the advisory [0, 1] fade-in ramp for rec.
func (s *Session[T]) GetTileFadeAlpha(rec Record[T]) float64 {
	return s.loader.GetTileFadeAlpha(rec)
}

// GetCacheStats returns the underlying cache's statistics snapshot.
func (s *Session[T]) GetCacheStats() cache.Stats {
	return s.loader.GetCacheStats()
}

// GetLoadingStats returns a snapshot of queue/in-flight/generation state.
func (s *Session[T]) GetLoadingStats() loader.LoadingStats {
	return s.loader.GetLoadingStats()
}

// Clear cancels pending debounce timers and empties the queue, tile
// records, in-flight bookkeeping and cached tiles. The load generation and
// the cache's hit/miss/eviction counters are kept, not reset.
func (s *Session[T]) Clear() {
	s.loader.Clear()
}
