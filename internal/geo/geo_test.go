package geo

import (
	"math"
	"testing"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	p := Point{Lat: 14.60, Lon: 120.98}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistance_KnownPairs(t *testing.T) {
	testCases := []struct {
		name      string
		a, b      Point
		want      float64
		tolerance float64
	}{
		{
			name:      "one degree of latitude",
			a:         Point{Lat: 0, Lon: 0},
			b:         Point{Lat: 1, Lon: 0},
			want:      EarthRadiusMeters * math.Pi / 180,
			tolerance: 0.001,
		},
		{
			name:      "antipodal points",
			a:         Point{Lat: 0, Lon: 0},
			b:         Point{Lat: 0, Lon: 180},
			want:      EarthRadiusMeters * math.Pi,
			tolerance: 0.001,
		},
		{
			name:      "manila to makati",
			a:         Point{Lat: 14.5995, Lon: 120.9842},
			b:         Point{Lat: 14.5547, Lon: 121.0244},
			want:      6605,
			tolerance: 50,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.a, tc.b)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("expected %f (+/- %f), got %f", tc.want, tc.tolerance, got)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 14.61, Lon: 120.99}
	b := Point{Lat: 14.58, Lon: 121.01}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("distance is not symmetric: %f vs %f", Distance(a, b), Distance(b, a))
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidLatitude(-90) || !ValidLatitude(90) || ValidLatitude(90.0001) {
		t.Error("latitude bounds are wrong")
	}
	if !ValidLongitude(-180) || !ValidLongitude(180) || ValidLongitude(-180.5) {
		t.Error("longitude bounds are wrong")
	}
}
