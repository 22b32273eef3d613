package route

import (
	"errors"
	"math"
)

var ErrTooFewWaypoints = errors.New("route needs at least two waypoints")

type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// Stop is a scheduled halt shown on the trip timeline. Progress is the
// 0..100 mark at which the bus reaches it.
type Stop struct {
	Name     string  `json:"name"`
	Time     string  `json:"time"`
	Progress float64 `json:"progress"`
}

type Position struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	BearingDeg float64 `json:"bearing"`
}

type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Route is an immutable polyline. Segment lengths are derived on every query
// and never stored, so they cannot drift from the waypoints.
type Route struct {
	ID    string
	Name  string
	Stops []Stop

	waypoints []Waypoint
}

func New(id, name string, waypoints []Waypoint, stops []Stop) (*Route, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	st := make([]Stop, len(stops))
	copy(st, stops)
	return &Route{ID: id, Name: name, Stops: st, waypoints: wps}, nil
}

// Waypoints returns a copy of the route's points in travel order.
func (r *Route) Waypoints() []Waypoint {
	out := make([]Waypoint, len(r.waypoints))
	copy(out, r.waypoints)
	return out
}

func (r *Route) Origin() Waypoint      { return r.waypoints[0] }
func (r *Route) Destination() Waypoint { return r.waypoints[len(r.waypoints)-1] }

// Distance is the Euclidean distance in degree space. It is only used to
// proportion progress across segments, not as a real-world length.
func Distance(a, b Waypoint) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

// SegmentLengths returns the length of each consecutive pair of waypoints.
func (r *Route) SegmentLengths() []float64 {
	out := make([]float64, len(r.waypoints)-1)
	for i := 0; i < len(r.waypoints)-1; i++ {
		out[i] = Distance(r.waypoints[i], r.waypoints[i+1])
	}
	return out
}

func (r *Route) TotalLength() float64 {
	total := 0.0
	for _, l := range r.SegmentLengths() {
		total += l
	}
	return total
}

// Traveled converts progress into the distance covered along the route.
func (r *Route) Traveled(progress float64) float64 {
	return clampProgress(progress) / 100 * r.TotalLength()
}

// Locate returns the segment index holding the given progress and the
// fraction covered within it. The first segment whose end reaches the target
// wins, so a boundary point belongs to the earlier segment. ok is false at or
// past the end of the route.
func (r *Route) Locate(progress float64) (segment int, fraction float64, ok bool) {
	p := clampProgress(progress)
	if p >= 100 {
		return 0, 0, false
	}
	lengths := r.SegmentLengths()
	total := 0.0
	for _, l := range lengths {
		total += l
	}
	target := p / 100 * total
	covered := 0.0
	for i, l := range lengths {
		if target <= covered+l {
			if l == 0 {
				return i, 0, true
			}
			return i, (target - covered) / l, true
		}
		covered += l
	}
	return 0, 0, false
}

// PositionAt maps progress (0..100) to a coordinate on the route and the
// bearing of the segment it falls on. Out-of-range input is clamped; at or
// past 100 the destination is returned with bearing 0.
func (r *Route) PositionAt(progress float64) Position {
	i, frac, ok := r.Locate(progress)
	if !ok {
		end := r.Destination()
		return Position{Lat: end.Lat, Lon: end.Lon}
	}
	a, b := r.waypoints[i], r.waypoints[i+1]
	return Position{
		Lat:        a.Lat + (b.Lat-a.Lat)*frac,
		Lon:        a.Lon + (b.Lon-a.Lon)*frac,
		BearingDeg: Bearing(a, b),
	}
}

// Bearing is the initial forward azimuth from a to b in degrees [0,360).
func Bearing(a, b Waypoint) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	brng := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(brng+360, 360)
}

func (r *Route) Bounds() Bounds {
	b := Bounds{
		MinLat: r.waypoints[0].Lat, MaxLat: r.waypoints[0].Lat,
		MinLon: r.waypoints[0].Lon, MaxLon: r.waypoints[0].Lon,
	}
	for _, w := range r.waypoints[1:] {
		b.MinLat = math.Min(b.MinLat, w.Lat)
		b.MaxLat = math.Max(b.MaxLat, w.Lat)
		b.MinLon = math.Min(b.MinLon, w.Lon)
		b.MaxLon = math.Max(b.MaxLon, w.Lon)
	}
	return b
}

func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// NextStop returns the first stop still ahead of progress, or the last stop
// once every mark has been passed.
func (r *Route) NextStop(progress float64) (Stop, bool) {
	if len(r.Stops) == 0 {
		return Stop{}, false
	}
	p := clampProgress(progress)
	for _, s := range r.Stops {
		if s.Progress > p {
			return s, true
		}
	}
	return r.Stops[len(r.Stops)-1], true
}

func clampProgress(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
