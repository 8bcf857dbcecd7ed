package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistanceOneMilliDegree(t *testing.T) {
	d := HaversineDistance(10, 10, 10.001, 10)
	if math.Abs(d-111.19) > 1 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineDistanceSaintDenisToSaintPierre(t *testing.T) {
	// Saint-Denis (-20.882, 55.450) to Saint-Pierre (-21.339, 55.478) ~ 51 km
	d := HaversineDistance(-20.882, 55.450, -21.339, 55.478)
	if d < 49000 || d > 53000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestLegDistance(t *testing.T) {
	if d, ok := LegDistance(1, 2, 1, 2); !ok || d != 0 {
		t.Errorf("identical coordinates: got %v, %v", d, ok)
	}
	if _, ok := LegDistance(math.NaN(), 2, 1, 2); ok {
		t.Errorf("NaN latitude should not be ok")
	}
	if _, ok := LegDistance(1, math.Inf(1), 1, 2); ok {
		t.Errorf("infinite longitude should not be ok")
	}
	if d, ok := LegDistance(10, 10, 10.001, 10); !ok || d <= 0 {
		t.Errorf("regular leg: got %v, %v", d, ok)
	}
}
