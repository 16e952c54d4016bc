// Package loader implements the viewport-driven tile loader: debounced
// view-change ingestion, center-out enumeration via internal/tilemath,
// a bounded-concurrency queue feeding the host-supplied LoadTile
// callback, generation-based stale-result discard, and parent-chain
// fallback lookup for the renderer.
//
// UpdateViewport and ProcessQueue are meant to be called from a single
// goroutine — the host's render/event loop — exactly as the spec's
// cooperative, single-threaded model assumes. The only goroutines the
// loader itself spawns are the per-tile load calls started from
// ProcessQueue; those communicate back into the loader only by taking
// its internal mutex, so they never race with the driving goroutine.
package loader

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/larskrogh/cogviewer/internal/cache"
	"github.com/larskrogh/cogviewer/internal/tilemath"
)

// LoadFunc is the host-provided, asynchronous tile fetch/decode callback.
// It is opaque to the loader: it may hit the network, decode a GeoTIFF
// tile, or synthesize a payload, and it returns a payload of whatever
// type T the loader was instantiated with. A completion for a generation
// older than the loader's current generation is discarded by the loader,
// never surfaced to LoadFunc itself.
type LoadFunc[T any] func(ctx context.Context, coord tilemath.Coord, generation int64) (T, error)

// SizeFunc estimates the byte cost of a decoded payload for the cache's
// byte budget. The default returns 1 MiB regardless of payload, per spec.
type SizeFunc[T any] func(payload T) int64

// DefaultEstimateSize is the spec's default size estimator: a flat 1 MiB
// per payload, used when no SizeFunc is supplied.
func DefaultEstimateSize[T any](T) int64 { return 1 << 20 }

// CalculateTextureSize is the convenience estimator for texture payloads:
// width * height * bytesPerPixel (default 4, RGBA8).
func CalculateTextureSize(width, height int, bytesPerPixel ...int) int64 {
	bpp := 4
	if len(bytesPerPixel) > 0 && bytesPerPixel[0] > 0 {
		bpp = bytesPerPixel[0]
	}
	return int64(width) * int64(height) * int64(bpp)
}

// LoadingStats is a point-in-time snapshot of the loader's queue/in-flight
// state, analogous to cache.Stats for the cache.
type LoadingStats struct {
	Queued     int
	InFlight   int
	Generation int64
	IsZooming  bool
}

// Loader is the spec's Tile Loader component, parametric over the opaque
// payload type T.
type Loader[T any] struct {
	cfg    Config
	cache  *cache.Cache[T]
	loadFn LoadFunc[T]
	sizeFn SizeFunc[T]
	timer  Timer
	nowFn  func() int64

	sem *semaphore.Weighted

	mu             sync.Mutex
	records        map[string]*Record[T]
	queue          []string
	queuedSet      map[string]bool
	inFlight       map[string]bool
	loadGeneration int64
	lastZoom       int
	hasZoom        bool
	isZooming      bool
	panHandle      Handle
	zoomHandle     Handle

	// testApplied, when non-nil, receives a signal each time runLoad
	// finishes applying a completion. Test-only instrumentation for
	// deterministic synchronization with the load goroutine.
	testApplied chan struct{}
}

// Option configures a Loader at construction time.
type Option[T any] func(*Loader[T])

// WithSizeFunc overrides the default (flat 1 MiB) size estimator.
func WithSizeFunc[T any](f SizeFunc[T]) Option[T] {
	return func(l *Loader[T]) { l.sizeFn = f }
}

// WithTimer overrides the production time.AfterFunc-backed Timer, e.g.
// with a fake clock in tests.
func WithTimer[T any](t Timer) Option[T] {
	return func(l *Loader[T]) { l.timer = t }
}

// withNow overrides the millisecond clock used for load timestamps and
// fade-alpha computation. Test-only; unexported.
func withNow[T any](f func() int64) Option[T] {
	return func(l *Loader[T]) { l.nowFn = f }
}

// withAppliedHook installs a channel that receives a signal each time
// runLoad finishes applying a completion. Test-only; unexported.
func withAppliedHook[T any](ch chan struct{}) Option[T] {
	return func(l *Loader[T]) { l.testApplied = ch }
}

// New creates a Loader with the given config (zero fields filled with
// spec defaults) and host-supplied load callback.
func New[T any](cfg Config, loadFn LoadFunc[T], opts ...Option[T]) *Loader[T] {
	cfg = withDefaults(cfg)
	l := &Loader[T]{
		cfg:       cfg,
		cache:     cache.New[T](cfg.CacheSizeMB),
		loadFn:    loadFn,
		sizeFn:    DefaultEstimateSize[T],
		timer:     NewRealTimer(),
		nowFn:     func() int64 { return time.Now().UnixMilli() },
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrentLoads)),
		records:   make(map[string]*Record[T]),
		queuedSet: make(map[string]bool),
		inFlight:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader[T]) now() int64 { return l.nowFn() }

// UpdateViewport ingests a pan/zoom event, debouncing it per spec §4.4.
func (l *Loader[T]) UpdateViewport(bounds tilemath.Bounds, zoom int) {
	l.mu.Lock()

	zoomChanged := !l.hasZoom || zoom != l.lastZoom
	l.hasZoom = true
	if zoomChanged {
		l.handleZoomChangeLocked(zoom)
	}

	l.timer.Cancel(l.panHandle)
	if !zoomChanged {
		l.timer.Cancel(l.zoomHandle)
		// The zoom timer that would have cleared isZooming was just
		// canceled by this pan, so clear it here instead — otherwise it
		// sticks true (and ProcessQueue starts nothing) until the next
		// zoom change.
		l.isZooming = false
	}

	if zoomChanged {
		l.isZooming = true
		l.zoomHandle = l.timer.Arm(time.Duration(l.cfg.ZoomDebounceMs)*time.Millisecond, func() {
			l.mu.Lock()
			l.isZooming = false
			l.mu.Unlock()
			l.ProcessViewChange(bounds, zoom)
		})
	} else {
		l.panHandle = l.timer.Arm(time.Duration(l.cfg.PanDebounceMs)*time.Millisecond, func() {
			l.ProcessViewChange(bounds, zoom)
		})
	}

	l.mu.Unlock()
}

// HandleZoomChange bumps the generation, clears the queue, invalidates
// stale cache entries, and resets in-flight records whose generation is
// now stale. Called synchronously by UpdateViewport on zoom change; also
// exported for callers that want to drive it directly (e.g. tests).
func (l *Loader[T]) HandleZoomChange(newZoom int) {
	l.mu.Lock()
	l.handleZoomChangeLocked(newZoom)
	l.hasZoom = true
	l.mu.Unlock()
}

func (l *Loader[T]) handleZoomChangeLocked(newZoom int) {
	l.loadGeneration++
	l.lastZoom = newZoom
	l.queue = l.queue[:0]
	for k := range l.queuedSet {
		delete(l.queuedSet, k)
	}
	l.cache.InvalidateOldGenerations(l.loadGeneration)

	for key := range l.inFlight {
		rec, ok := l.records[key]
		if ok && rec.Generation < l.loadGeneration {
			rec.State = Pending
			delete(l.inFlight, key)
		}
	}
}

// ProcessViewChange enumerates, center-out orders, and enqueues the tiles
// visible for (bounds, zoom) that aren't already cached, queued, or
// in-flight.
func (l *Loader[T]) ProcessViewChange(bounds tilemath.Bounds, zoom int) {
	visible := tilemath.GetVisibleTiles(bounds, zoom)
	center := tilemath.GetViewportCenterTile(bounds, zoom)
	ordered := tilemath.PrioritizeTiles(visible, center)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, coord := range ordered {
		key := coord.Key()
		if l.cache.Has(key) {
			continue
		}
		if l.queuedSet[key] || l.inFlight[key] {
			continue
		}

		l.queue = append(l.queue, key)
		l.queuedSet[key] = true

		if rec, ok := l.records[key]; ok {
			rec.Generation = l.loadGeneration
			rec.State = Pending
			rec.Err = nil
		} else {
			l.records[key] = &Record[T]{
				Coord:      coord,
				Key:        key,
				State:      Pending,
				Generation: l.loadGeneration,
			}
		}
	}
}

// ProcessQueue drains the queue under the concurrency and per-tick start
// caps. Call once per render frame.
func (l *Loader[T]) ProcessQueue() {
	l.mu.Lock()
	if l.isZooming {
		l.mu.Unlock()
		return
	}

	starts := 0
	for starts < l.cfg.MaxStartsPerFrame && len(l.queue) > 0 {
		if !l.sem.TryAcquire(1) {
			break
		}

		key := l.queue[0]
		l.queue = l.queue[1:]
		delete(l.queuedSet, key)

		rec, ok := l.records[key]
		if !ok || rec.Generation != l.loadGeneration {
			l.sem.Release(1)
			continue
		}

		rec.State = Loading
		l.inFlight[key] = true
		starts++
		go l.runLoad(rec)
	}
	l.mu.Unlock()
}

// runLoad invokes the host LoadFunc for rec and applies the result,
// discarding it silently if rec's generation has gone stale by the time
// the call returns.
func (l *Loader[T]) runLoad(rec *Record[T]) {
	gen := rec.Generation
	coord := rec.Coord
	key := rec.Key

	payload, err := l.loadFn(context.Background(), coord, gen)

	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.sem.Release(1)
	defer l.signalApplied()

	// Only clear the in-flight marker if this call still owns it: if the
	// key was re-queued and re-started at a newer generation (a zoom
	// reset), that newer goroutine's marker must survive this stale call
	// returning, or ProcessQueue could admit a duplicate load for key.
	if cur, ok := l.records[key]; ok && cur.Generation == gen {
		delete(l.inFlight, key)
	}

	if gen != l.loadGeneration {
		return
	}
	cur, ok := l.records[key]
	if !ok || cur.Generation != gen {
		return
	}

	if err != nil {
		cur.State = Error
		cur.Err = &LoadError{Key: key, Err: err}
		return
	}

	cur.State = Loaded
	cur.Payload = payload
	cur.LoadTimeMs = l.now()
	l.cache.Set(key, payload, l.sizeFn(payload), gen)
}

func (l *Loader[T]) signalApplied() {
	if l.testApplied == nil {
		return
	}
	select {
	case l.testApplied <- struct{}{}:
	default:
	}
}

// GetTile returns the current record for key, preferring a cache hit
// (reflected into the record as Loaded) over the stored record.
func (l *Loader[T]) GetTile(key string) (Record[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if payload, ok := l.cache.Get(key); ok {
		rec, exists := l.records[key]
		if !exists {
			coord, _ := tilemath.ParseKey(key)
			rec = &Record[T]{Key: key, Coord: coord, Generation: l.loadGeneration}
			l.records[key] = rec
		}
		rec.State = Loaded
		rec.Payload = payload
		return *rec, true
	}

	rec, ok := l.records[key]
	if !ok {
		return Record[T]{}, false
	}
	return *rec, true
}

// GetLoadedTiles returns a snapshot of every record currently Loaded.
func (l *Loader[T]) GetLoadedTiles() []Record[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record[T], 0, len(l.records))
	for _, rec := range l.records {
		if rec.State == Loaded {
			out = append(out, *rec)
		}
	}
	return out
}

// FindLoadedParent walks the parent chain from coord upward, returning
// the nearest ancestor whose record is Loaded. It reads l.records
// directly rather than through GetTile: a renderer's fallback probe over
// tiles that were never requested shouldn't count as cache misses or
// reorder LRU recency for tiles that were.
func (l *Loader[T]) FindLoadedParent(coord tilemath.Coord) (Record[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := coord
	for {
		parent, ok := tilemath.GetParentTile(cur)
		if !ok {
			return Record[T]{}, false
		}
		if rec, ok := l.records[parent.Key()]; ok && rec.State == Loaded {
			return *rec, true
		}
		cur = parent
	}
}

// GetTileFadeAlpha returns the advisory fade-in ramp in [0, 1]: 1 if the
// record has never loaded, otherwise the fraction of FadeDurationMs
// elapsed since LoadTimeMs, clamped to [0, 1].
func (l *Loader[T]) GetTileFadeAlpha(rec Record[T]) float64 {
	if rec.LoadTimeMs == 0 {
		return 1
	}
	elapsed := l.now() - rec.LoadTimeMs
	alpha := float64(elapsed) / float64(l.cfg.FadeDurationMs)
	if alpha > 1 {
		return 1
	}
	if alpha < 0 {
		return 0
	}
	return alpha
}

// GetCacheStats returns the underlying cache's statistics snapshot.
func (l *Loader[T]) GetCacheStats() cache.Stats {
	return l.cache.Stats()
}

// GetLoadingStats returns a snapshot of queue/in-flight/generation state.
func (l *Loader[T]) GetLoadingStats() LoadingStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoadingStats{
		Queued:     len(l.queue),
		InFlight:   len(l.inFlight),
		Generation: l.loadGeneration,
		IsZooming:  l.isZooming,
	}
}

// Clear resets the loader to its initial state: timers cancelled, queue
// and records emptied, in-flight bookkeeping cleared, cache purged.
// Goroutines for loads already in flight are left running; their results
// will be discarded on return since nothing will match their generation
// and key afterward.
func (l *Loader[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.timer.Cancel(l.panHandle)
	l.timer.Cancel(l.zoomHandle)
	l.panHandle = 0
	l.zoomHandle = 0

	l.queue = l.queue[:0]
	for k := range l.queuedSet {
		delete(l.queuedSet, k)
	}
	for k := range l.inFlight {
		delete(l.inFlight, k)
	}
	l.records = make(map[string]*Record[T])
	l.isZooming = false
	l.hasZoom = false
	// loadGeneration is deliberately left untouched: it must stay
	// non-decreasing for the loader's whole lifetime (spec invariant 4),
	// even across a Clear.
	l.cache.Clear()
}
