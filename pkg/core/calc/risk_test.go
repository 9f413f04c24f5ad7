package calc

import (
	"math"
	"testing"
)

func TestAltmanZPrimeScore(t *testing.T) {
	// WC 250, RE 480, EBIT 225, BE 700, Sales 1500, TA 1200, TL 500
	z := AltmanZPrimeScore(250, 480, 225, 700, 1500, 1200, 500)
	if !z.Valid || math.Abs(z.V-2.9062375) > 1e-9 {
		t.Errorf("Expected Z' 2.9062375, got %+v", z)
	}
	if zone := AltmanZone(z); zone != "safe" {
		t.Errorf("Expected safe zone, got %s", zone)
	}
}

func TestAltmanZScore(t *testing.T) {
	z := AltmanZScore(250, 480, 225, 1000, 1500, 1200, 500)
	want := 1.2*250/1200.0 + 1.4*480/1200.0 + 3.3*225/1200.0 + 0.6*1000/500.0 + 1500/1200.0
	if !z.Valid || math.Abs(z.V-want) > 1e-12 {
		t.Errorf("Expected Z %f, got %+v", want, z)
	}
	if AltmanZScore(1, 1, 1, 1, 1, 0, 1).Valid || AltmanZScore(1, 1, 1, 1, 1, 1, 0).Valid {
		t.Error("Zero assets or liabilities should be invalid")
	}
}

func TestAltmanZone(t *testing.T) {
	tests := map[float64]string{0.5: "distress", 1.23: "grey", 2.0: "grey", 2.91: "safe"}
	for z, want := range tests {
		if got := AltmanZone(Valid(z)); got != want {
			t.Errorf("Z' %f: expected %s, got %s", z, want, got)
		}
	}
	if AltmanZone(Invalid()) != "" {
		t.Error("Invalid score has no zone")
	}
}
