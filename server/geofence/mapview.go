package geofence

import "math"

// Polygon colours used for every severity ring.
const (
	PolygonStrokeColor = "#c0392b"
	PolygonFillColor   = "rgba(192, 57, 43, 0.4)"
)

// Marker is a titled point on the map.
type Marker struct {
	Coordinate Coordinate `json:"coordinate"`
	Title      string     `json:"title"`
}

// Polygon is one renderable severity ring.
type Polygon struct {
	// Severity is the ring position, 0 being the innermost zone
	Severity    int          `json:"severity"`
	Coordinates []Coordinate `json:"coordinates"`
	StrokeColor string       `json:"strokeColor"`
	FillColor   string       `json:"fillColor"`
}

// MapView is everything a map widget needs to draw a screen.
type MapView struct {
	Region   Region    `json:"region"`
	Markers  []Marker  `json:"markers"`
	Polygons []Polygon `json:"polygons"`
}

// RegionAround builds a region centred on coord.
func RegionAround(coord Coordinate, delta float64) Region {
	return Region{
		Latitude:       coord.Latitude,
		Longitude:      coord.Longitude,
		LatitudeDelta:  delta,
		LongitudeDelta: delta,
	}
}

// RecenterOnRing centres on the first vertex of the primary ring. When the
// primary ring is missing or empty the previous viewport is kept.
func RecenterOnRing(prev Region, rings []Ring, delta float64) Region {
	if len(rings) == 0 || len(rings[0]) == 0 {
		return prev
	}
	return RegionAround(rings[0][0], delta)
}

// BuildMapView assembles polygons for every ring plus the given markers.
// Empty rings are kept as empty polygons; renderers must tolerate them.
func BuildMapView(prev Region, rings []Ring, markers ...Marker) MapView {
	view := MapView{
		Region:   RecenterOnRing(prev, rings, DetailDelta),
		Markers:  make([]Marker, 0, len(markers)),
		Polygons: make([]Polygon, 0, len(rings)),
	}

	view.Markers = append(view.Markers, markers...)

	for i, ring := range rings {
		coords := make([]Coordinate, len(ring))
		copy(coords, ring)
		view.Polygons = append(view.Polygons, Polygon{
			Severity:    i,
			Coordinates: coords,
			StrokeColor: PolygonStrokeColor,
			FillColor:   PolygonFillColor,
		})
	}

	return view
}

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
