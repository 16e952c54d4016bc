package projection

import "math"

// EarthRadius is the WGS84 equatorial radius in meters, as used by the
// spherical Web Mercator projection.
const EarthRadius = 6378137.0

// mercatorScale is S = pi * EarthRadius, the half-circumference used to
// normalize Web Mercator coordinates to the [-180, 180] longitude range.
var mercatorScale = math.Pi * EarthRadius

// WebMercatorToWGS84 converts EPSG:3857 meters to WGS84 degrees.
func WebMercatorToWGS84(x, y float64) (lng, lat float64) {
	lng = x / mercatorScale * 180.0
	lat = math.Atan(math.Exp(y/mercatorScale*math.Pi))*360.0/math.Pi - 90.0
	return lng, lat
}

// WGS84ToWebMercator converts WGS84 degrees to EPSG:3857 meters.
func WGS84ToWebMercator(lng, lat float64) (x, y float64) {
	x = lng * mercatorScale / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) * mercatorScale / 180.0 * (180.0 / math.Pi)
	return x, y
}
