package projection

import (
	"math"
	"testing"
)

func TestMercatorRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lng, lat float64
	}{
		{"nyc", -73.9857, 40.7484},
		{"zurich", 8.5417, 47.3769},
		{"origin", 0, 0},
		{"near north limit", 10, 85.0511},
		{"near south limit", -10, -85.0511},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := WGS84ToWebMercator(tt.lng, tt.lat)
			lng2, lat2 := WebMercatorToWGS84(x, y)
			if math.Abs(lng2-tt.lng) > 1e-7 || math.Abs(lat2-tt.lat) > 1e-7 {
				t.Errorf("round trip (%v, %v) -> (%v, %v) -> (%v, %v), want within 1e-7",
					tt.lng, tt.lat, x, y, lng2, lat2)
			}
		})
	}
}

func TestWGS84ToWebMercatorOrigin(t *testing.T) {
	x, y := WGS84ToWebMercator(0, 0)
	if math.Abs(x) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("WGS84ToWebMercator(0,0) = (%v, %v), want (0, 0)", x, y)
	}
}
