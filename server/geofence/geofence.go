package geofence

// Coordinate is a single WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ring is an ordered sequence of vertices describing one severity zone.
// A decoded ring is either empty or holds at least MinRingPoints vertices.
type Ring []Coordinate

// MinRingPoints is the smallest vertex count a usable ring can have.
const MinRingPoints = 3

// Region is the map viewport. It is derived from the data being shown and
// is never authoritative.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// IsZero reports whether the region was never centred.
func (r Region) IsZero() bool {
	return r.Latitude == 0 && r.Longitude == 0
}

const (
	// HomeDelta is the span used around the user's own position.
	HomeDelta = 0.03

	// DetailDelta is the span used when showing an alert area.
	DetailDelta = 0.05
)
