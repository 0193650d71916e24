package tracking

// PositionSource flags where a position came from. Simulated positions are
// a cosmetic illusion for the moving-marker view and must never be confused
// with telemetry reported by the server.
type PositionSource string

const (
	PositionSimulated PositionSource = "simulated"
	PositionReported  PositionSource = "reported"
)

// Position is a coordinate tagged with its provenance.
type Position struct {
	Lat    float64        `json:"lat"`
	Lon    float64        `json:"lon"`
	Source PositionSource `json:"source"`
}

// Simulator walks an ordered waypoint path with a fixed per-tick step,
// producing a smoothly moving position without real telemetry. Once the
// final waypoint is reached the position holds there indefinitely.
type Simulator struct {
	waypoints []Waypoint
	step      float64

	segment  int
	progress float64
}

// NewSimulator builds a Simulator over the path. step is the fraction of a
// segment covered per tick; values outside (0,1] are clamped to 1.
func NewSimulator(waypoints []Waypoint, step float64) *Simulator {
	if step <= 0 || step > 1 {
		step = 1
	}
	path := make([]Waypoint, len(waypoints))
	copy(path, waypoints)
	return &Simulator{waypoints: path, step: step}
}

// Tick advances the simulation by one step and returns the new position.
func (s *Simulator) Tick() Position {
	if s.done() {
		return s.Position()
	}
	s.progress += s.step
	if s.progress >= 1 {
		if s.segment < len(s.waypoints)-2 {
			s.segment++
			s.progress = 0
		} else {
			s.progress = 1
		}
	}
	return s.Position()
}

// Position returns the current interpolated position without advancing.
func (s *Simulator) Position() Position {
	switch len(s.waypoints) {
	case 0:
		return Position{Source: PositionSimulated}
	case 1:
		return Position{Lat: s.waypoints[0].Lat, Lon: s.waypoints[0].Lon, Source: PositionSimulated}
	}
	from := s.waypoints[s.segment]
	to := s.waypoints[s.segment+1]
	return Position{
		Lat:    from.Lat + (to.Lat-from.Lat)*s.progress,
		Lon:    from.Lon + (to.Lon-from.Lon)*s.progress,
		Source: PositionSimulated,
	}
}

// done reports whether the simulation has reached the final waypoint.
func (s *Simulator) done() bool {
	return len(s.waypoints) < 2 ||
		(s.segment == len(s.waypoints)-2 && s.progress >= 1)
}
