// Package station holds the registry of CO2 surface-observation sites and
// the Station value that the rest of the pipeline passes around.
package station

import "math"

// Station is a fixed-location CO2 surface-observation site identified by a
// short code. Latitude, Longitude and Altitude are the means over all loaded
// observations for the site; they are zero until a dataset loader fills them
// in, and are not touched again afterwards.
type Station struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"` // degrees east, [0,360)
	Altitude  float64 `json:"altitude"`  // metres above sea level
}

// WrapLon360 maps arbitrary degree longitudes into the [0, 360) range.
// Model grids in this pipeline are defined on a 0-360 longitude axis, so
// station coordinates recorded as -180-180 must be wrapped before any
// spatial matching.
func WrapLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}
