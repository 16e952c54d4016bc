// Package projection implements the coordinate conversions the tile
// prioritizer and loader rely on: EPSG:3857 (Web Mercator) <-> EPSG:4326
// (WGS84), plus identity. No general reprojection library is wired in —
// the core guarantees EPSG:3857 input, so a closed-form transform is all
// that is needed.
package projection

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrUnsupportedProjection is returned by CreateConverter for any EPSG
// pair other than (3857,4326), (4326,3857), or identity.
var ErrUnsupportedProjection = errors.New("projection: unsupported EPSG pair")

// Definition is the normalized EPSG:3857 record described by the spec's
// data model: name "merc", meter units, WGS84 equatorial radius as the
// semi-axes, origin at zero lat/lon, unit scale.
type Definition struct {
	Name       string
	Unit       string
	SemiMajor  float64
	SemiMinor  float64
	OriginLat  float64
	OriginLon  float64
	Scale      float64
}

// WebMercatorDefinition is the single normalized projection definition
// the spec names in §3.
var WebMercatorDefinition = Definition{
	Name:      "merc",
	Unit:      "meter",
	SemiMajor: EarthRadius,
	SemiMinor: EarthRadius,
	OriginLat: 0,
	OriginLon: 0,
	Scale:     1,
}

// Converter holds a matched forward/inverse pair for one ordered EPSG pair.
type Converter struct {
	Forward func(x, y float64) (x2, y2 float64)
	Inverse func(x2, y2 float64) (x, y float64)
}

var epsgDigits = regexp.MustCompile(`\d+`)

// parseEPSG extracts the decimal digit run from a code that may carry an
// "EPSG:" prefix (or none at all), e.g. "EPSG:4326", "4326", "epsg:3857".
func parseEPSG(code string) (int, bool) {
	m := epsgDigits.FindString(code)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CreateConverter returns a forward/inverse conversion pair for the
// ordered EPSG code pair (src, tgt). Supported pairs are (3857,4326),
// (4326,3857), and identity (src == tgt, for any numerically valid code).
// Codes may be given as bare decimal strings or with an "EPSG:" prefix.
func CreateConverter(src, tgt string) (*Converter, error) {
	s, ok1 := parseEPSG(src)
	t, ok2 := parseEPSG(tgt)
	if !ok1 || !ok2 {
		return nil, ErrUnsupportedProjection
	}

	if s == t {
		return &Converter{
			Forward: func(x, y float64) (float64, float64) { return x, y },
			Inverse: func(x, y float64) (float64, float64) { return x, y },
		}, nil
	}

	switch {
	case s == 3857 && t == 4326:
		return &Converter{
			Forward: WebMercatorToWGS84,
			Inverse: WGS84ToWebMercator,
		}, nil
	case s == 4326 && t == 3857:
		return &Converter{
			Forward: WGS84ToWebMercator,
			Inverse: WebMercatorToWGS84,
		}, nil
	default:
		return nil, ErrUnsupportedProjection
	}
}
