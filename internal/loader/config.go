package loader

// Config holds the loader's tunables, each with the spec's default value.
// Zero or negative fields of a Config passed to New are filled in with defaults, the
// way the teacher's tile.Config/encode.NewEncoder constructors apply
// defaults for zero/negative inputs.
type Config struct {
	// MaxConcurrentLoads bounds simultaneously outstanding LoadTile calls.
	MaxConcurrentLoads int
	// MaxStartsPerFrame bounds new loads started per ProcessQueue tick.
	MaxStartsPerFrame int
	// PanDebounceMs delays committing a pan-only view change.
	PanDebounceMs int
	// ZoomDebounceMs delays committing a zoom change; also the window
	// during which new starts are suppressed (isZooming).
	ZoomDebounceMs int
	// CacheSizeMB is the cache budget, converted to bytes as *2^20.
	CacheSizeMB int
	// FadeDurationMs is the divisor for the fade-alpha ramp.
	FadeDurationMs int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentLoads: 4,
		MaxStartsPerFrame:  2,
		PanDebounceMs:      50,
		ZoomDebounceMs:     150,
		CacheSizeMB:        50,
		FadeDurationMs:     250,
	}
}

// withDefaults fills any zero or negative field of cfg with DefaultConfig's value.
func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = d.MaxConcurrentLoads
	}
	if cfg.MaxStartsPerFrame <= 0 {
		cfg.MaxStartsPerFrame = d.MaxStartsPerFrame
	}
	if cfg.PanDebounceMs <= 0 {
		cfg.PanDebounceMs = d.PanDebounceMs
	}
	if cfg.ZoomDebounceMs <= 0 {
		cfg.ZoomDebounceMs = d.ZoomDebounceMs
	}
	if cfg.CacheSizeMB <= 0 {
		cfg.CacheSizeMB = d.CacheSizeMB
	}
	if cfg.FadeDurationMs <= 0 {
		cfg.FadeDurationMs = d.FadeDurationMs
	}
	return cfg
}
