package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(41.385064, 2.173403, 41.385064, 2.173403); d != 0 {
		t.Fatalf("want 0 got %f", d)
	}
}

func TestHaversine_BarcelonaBerlin(t *testing.T) {
	// Known distance is roughly 1498 km.
	d := Haversine(41.385064, 2.173403, 52.520007, 13.404954)
	if d < 1_480_000 || d > 1_520_000 {
		t.Fatalf("Barcelona-Berlin distance out of range: %f", d)
	}
}

func TestHaversine_QuarterMeridian(t *testing.T) {
	d := Haversine(0, 0, 90, 0)
	want := EarthRadiusMeters * math.Pi / 2
	if !almost(d, want, 1) {
		t.Fatalf("want %f got %f", want, d)
	}
}

func TestCentroid_Empty(t *testing.T) {
	c := Centroid(nil)
	if c.Latitude != 0 || c.Longitude != 0 {
		t.Fatalf("want origin got %+v", c)
	}
}

func TestCentroid_Mean(t *testing.T) {
	c := Centroid([]Point{
		{Latitude: 10, Longitude: 20},
		{Latitude: 20, Longitude: 40},
	})
	if !almost(c.Latitude, 15, 1e-9) || !almost(c.Longitude, 30, 1e-9) {
		t.Fatalf("want (15,30) got %+v", c)
	}
}

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		lat, lon float64
		ok       bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{-90.1, 0, false},
	}
	for _, c := range cases {
		if got := ValidateCoordinates(c.lat, c.lon); got != c.ok {
			t.Fatalf("ValidateCoordinates(%f,%f)=%v want %v", c.lat, c.lon, got, c.ok)
		}
	}
}
