// Command cogviewer-demo drives a Session through a scripted pan/zoom
// sequence and reports loader/cache statistics as it runs. Tiles are
// synthesized locally per spec §1's "opaque LoadTile collaborator" model
// — the demo never needs a real raster source to exercise the loader's
// debounce, center-out ordering, and generation-invalidation paths.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	cogviewer "github.com/larskrogh/cogviewer"
	"github.com/larskrogh/cogviewer/internal/tilemath"
)

var version = "dev"

// tileSize is the synthetic payload's stand-in for an output tile's pixel
// edge length; the loader never inspects payload contents, and with the
// default size estimator the cache counts every payload as a flat 1 MiB.
const tileSize = 256

func main() {
	var (
		zoom          int
		frameMs       int
		steps         int
		cacheSizeMB   int
		maxConcurrent int
		verbose       bool
	)

	flag.IntVar(&zoom, "zoom", 8, "Starting zoom level")
	flag.IntVar(&frameMs, "frame-ms", 16, "Simulated frame interval in milliseconds")
	flag.IntVar(&steps, "steps", 200, "Number of simulated frames to run")
	flag.IntVar(&cacheSizeMB, "cache-mb", 50, "Tile cache budget in megabytes")
	flag.IntVar(&maxConcurrent, "concurrency", 4, "Maximum concurrent tile loads")
	flag.BoolVar(&verbose, "verbose", false, "Log periodic loader/cache stats while running")
	flag.Parse()

	cfg := cogviewer.DefaultConfig()
	cfg.CacheSizeMB = cacheSizeMB
	cfg.MaxConcurrentLoads = maxConcurrent

	session := cogviewer.NewSession(cfg, syntheticLoadTile)

	fmt.Printf("cogviewer-demo %s\n", version)
	fmt.Printf("  %-14s synthetic\n", "Source:")
	fmt.Printf("  %-14s %d MB\n", "Cache budget:", cacheSizeMB)
	fmt.Printf("  %-14s %d\n", "Concurrency:", maxConcurrent)
	fmt.Printf("  %-14s %d\n", "Frames:", steps)

	// A scripted pan sequence followed by a zoom-in, exercising the
	// loader's debounce, center-out ordering, and generation-invalidation
	// paths without needing a real input device.
	view := []struct {
		bounds tilemath.Bounds
		zoom   int
	}{
		{tilemath.Bounds{West: -10, East: 10, South: -10, North: 10}, zoom},
		{tilemath.Bounds{West: -5, East: 15, South: -10, North: 10}, zoom},
		{tilemath.Bounds{West: 0, East: 20, South: -5, North: 15}, zoom + 1},
	}

	frame := time.Duration(frameMs) * time.Millisecond
	for i := 0; i < steps; i++ {
		if i%50 == 0 {
			v := view[(i/50)%len(view)]
			session.OnViewportChange(v.bounds, v.zoom)
		}
		session.Tick()

		if verbose && i%25 == 0 {
			logStats(i, session)
		}

		time.Sleep(frame)
	}

	cs := session.GetCacheStats()
	ls := session.GetLoadingStats()
	fmt.Printf("Done: %d tiles cached (%s of %s budget), %d hits, %d misses, %d evictions, generation %d\n",
		cs.Entries, humanize.Bytes(uint64(cs.TotalBytes)), humanize.Bytes(uint64(cs.MaxBytes)),
		cs.Hits, cs.Misses, cs.Evictions, ls.Generation)
}

func logStats(frame int, session *cogviewer.Session[[]byte]) {
	cs := session.GetCacheStats()
	ls := session.GetLoadingStats()
	log.Printf("frame %d: cache %s/%s (%d entries, %d hits, %d misses, %d evictions), queued=%d inFlight=%d gen=%d",
		frame, humanize.Bytes(uint64(cs.TotalBytes)), humanize.Bytes(uint64(cs.MaxBytes)),
		cs.Entries, cs.Hits, cs.Misses, cs.Evictions, ls.Queued, ls.InFlight, ls.Generation)
}

// syntheticLoadTile is the LoadFunc the demo drives the loader with: a
// flat, deterministic per-coordinate RGBA payload standing in for a real
// decoded tile, enough to move a tile through Pending/Loading/Loaded and
// exercise the cache's byte accounting.
func syntheticLoadTile(ctx context.Context, coord tilemath.Coord, generation int64) ([]byte, error) {
	r, g, b, a := syntheticColor(coord)
	payload := make([]byte, tileSize*tileSize*4)
	for i := 0; i < len(payload); i += 4 {
		payload[i] = r
		payload[i+1] = g
		payload[i+2] = b
		payload[i+3] = a
	}
	return payload, nil
}

func syntheticColor(coord tilemath.Coord) (r, g, b, a byte) {
	h := uint32(coord.X)*2654435761 ^ uint32(coord.Y)*2246822519 ^ uint32(coord.Z)*3266489917
	return byte(h), byte(h >> 8), byte(h >> 16), 255
}
