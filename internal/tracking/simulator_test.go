package tracking

import "testing"

func TestSimulatorInterpolatesSegment(t *testing.T) {
	sim := NewSimulator([]Waypoint{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 0}}, 0.1)
	var pos Position
	for i := 0; i < 5; i++ {
		pos = sim.Tick()
	}
	if pos.Lat != 5 || pos.Lon != 0 {
		t.Fatalf("expected (5,0) after 5 ticks, got (%v,%v)", pos.Lat, pos.Lon)
	}
	if pos.Source != PositionSimulated {
		t.Fatalf("simulated positions must be labeled, got %q", pos.Source)
	}
}

func TestSimulatorHoldsAtFinalWaypoint(t *testing.T) {
	sim := NewSimulator([]Waypoint{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 0}}, 0.1)
	for i := 0; i < 25; i++ {
		sim.Tick()
	}
	pos := sim.Position()
	if pos.Lat != 10 || pos.Lon != 0 {
		t.Fatalf("expected hold at (10,0), got (%v,%v)", pos.Lat, pos.Lon)
	}
	if next := sim.Tick(); next != pos {
		t.Fatalf("position moved after reaching the end: %+v", next)
	}
}

func TestSimulatorAdvancesSegments(t *testing.T) {
	sim := NewSimulator([]Waypoint{{Lat: 0, Lon: 0}, {Lat: 2, Lon: 0}, {Lat: 2, Lon: 4}}, 0.5)
	sim.Tick()
	sim.Tick() // completes first segment, moves to second
	pos := sim.Tick()
	if pos.Lat != 2 || pos.Lon != 2 {
		t.Fatalf("expected (2,2) midway through second segment, got (%v,%v)", pos.Lat, pos.Lon)
	}
}

func TestSimulatorDegeneratePaths(t *testing.T) {
	empty := NewSimulator(nil, 0.2)
	if pos := empty.Tick(); pos.Lat != 0 || pos.Lon != 0 {
		t.Fatalf("empty path must stay at origin, got %+v", pos)
	}
	single := NewSimulator([]Waypoint{{Lat: 3, Lon: 4}}, 0.2)
	for i := 0; i < 3; i++ {
		if pos := single.Tick(); pos.Lat != 3 || pos.Lon != 4 {
			t.Fatalf("single waypoint must hold, got %+v", pos)
		}
	}
	clamped := NewSimulator([]Waypoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}}, 5)
	if pos := clamped.Tick(); pos.Lat != 1 {
		t.Fatalf("oversized step must clamp to one segment per tick, got %+v", pos)
	}
}
