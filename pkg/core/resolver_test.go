package core

import (
	"testing"

	"github.com/ChrisMcGann/LipidKey/pkg/adduct"
)

// mzFor returns the m/z of mass under adduct in the positive table
func mzFor(t *testing.T, mass float64, name string) float64 {
	t.Helper()
	mz, ok := adduct.PositiveTable().MZFromMass(mass, name)
	if !ok {
		t.Fatalf("unknown adduct %s", name)
	}
	return mz
}

func smallTable(names ...string) *adduct.Table {
	full := adduct.PositiveTable()
	t := adduct.NewTable()
	for _, name := range names {
		offset, _ := full.Lookup(name)
		t.Add(name, offset)
	}
	return t
}

func TestResolveCrossAdduct(t *testing.T) {
	const mass = 499.242724
	mzH := mzFor(t, mass, "[M+H]+")
	mzDimer := mzFor(t, mass, "[2M+H]+")

	r := NewResolver(ResolverConfig{})

	tests := []struct {
		name  string
		peaks []Peak
	}{
		{"ascending", []Peak{{MZ: mzH, Intensity: 1e6}, {MZ: mzDimer, Intensity: 2e5}}},
		{"descending", []Peak{{MZ: mzDimer, Intensity: 2e5}, {MZ: mzH, Intensity: 1e6}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(NewPeakSet(tt.peaks))
			if !ok {
				t.Fatal("Expected adduct to be resolved")
			}
			if got != "[M+H]+" {
				t.Errorf("Resolve() = %s, want [M+H]+", got)
			}
		})
	}
}

func TestResolveListedMZPairDoesNotAgree(t *testing.T) {
	// 500.2500 as [M+H]+ and 1001.4934 as [2M+H]+ imply 499.2428 and
	// 500.2431 Da, a full Dalton apart, and no other adduct pair agrees
	peaks := NewPeakSet([]Peak{
		{MZ: 500.2500, Intensity: 1e6},
		{MZ: 1001.4934, Intensity: 2e5},
	})

	table := adduct.PositiveTable()
	m1, _ := table.MassFromMZ(500.2500, "[M+H]+")
	m2, _ := table.MassFromMZ(1001.4934, "[2M+H]+")
	if diff := m2 - m1; diff < 0.99 || diff > 1.01 {
		t.Errorf("implied masses differ by %.4f Da, want about 1", diff)
	}

	if got, ok := NewResolver(ResolverConfig{}).Resolve(peaks); ok {
		t.Errorf("Resolve() = %s, want unresolved", got)
	}
}

func TestResolveLowerMZWins(t *testing.T) {
	const mass = 760.5851
	// Sodiated and potassiated forms of the same molecule
	peaks := NewPeakSet([]Peak{
		{MZ: mzFor(t, mass, "[M+K]+"), Intensity: 1e5},
		{MZ: mzFor(t, mass, "[M+Na]+"), Intensity: 1e6},
	})

	r := NewResolver(ResolverConfig{Table: smallTable("[M+K]+", "[M+Na]+")})
	got, ok := r.Resolve(peaks)
	if !ok {
		t.Fatal("Expected adduct to be resolved")
	}
	if got != "[M+Na]+" {
		t.Errorf("Resolve() = %s, want [M+Na]+", got)
	}
}

func TestResolveWaterLoss(t *testing.T) {
	peaks := NewPeakSet([]Peak{
		{MZ: 700.0, Intensity: 5e5},
		{MZ: 700.0 + adduct.WaterMass, Intensity: 1e6},
	})

	r := NewResolver(ResolverConfig{})
	got, ok := r.Resolve(peaks)
	if !ok {
		t.Fatal("Expected adduct to be resolved")
	}
	// The heavier peak gets the first adduct of the table that converts it
	if got != "[M+H]+" {
		t.Errorf("Resolve() = %s, want [M+H]+", got)
	}
	if _, known := r.Table().Lookup(got); !known {
		t.Errorf("Resolved adduct %s is not in the table", got)
	}
}

func TestIsWaterLoss(t *testing.T) {
	r := NewResolver(ResolverConfig{})

	tests := []struct {
		name string
		mz1  float64
		mz2  float64
		want bool
	}{
		{"exact", 500.0, 518.0106, true},
		{"reversed", 518.0106, 500.0, true},
		{"within tolerance", 500.0, 518.0196, true},
		{"outside tolerance", 500.0, 518.0306, false},
		{"unrelated", 500.0, 522.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.isWaterLoss(tt.mz1, tt.mz2); got != tt.want {
				t.Errorf("isWaterLoss(%v, %v) = %v, want %v", tt.mz1, tt.mz2, got, tt.want)
			}
		})
	}
}

func TestChargeStatePass(t *testing.T) {
	const mass = 800.0
	single := mzFor(t, mass, ProtonatedAdduct)
	double := mzFor(t, mass, DoublyProtonatedAdduct)

	r := NewResolver(ResolverConfig{Table: smallTable(ProtonatedAdduct, DoublyProtonatedAdduct)})

	for _, peaks := range [][]Peak{
		{{MZ: single, Intensity: 1}, {MZ: double, Intensity: 1}},
		{{MZ: double, Intensity: 1}, {MZ: single, Intensity: 1}},
	} {
		got, ok := r.chargeStatePass(NewPeakSet(peaks))
		if !ok {
			t.Fatal("Expected charge state pair to be found")
		}
		if got != ProtonatedAdduct {
			t.Errorf("chargeStatePass() = %s, want %s", got, ProtonatedAdduct)
		}
	}

	if _, ok := r.chargeStatePass(NewPeakSet([]Peak{{MZ: single}, {MZ: single + 3}})); ok {
		t.Error("Expected no charge state pair")
	}
}

func TestResolveChargeStatePair(t *testing.T) {
	const mass = 800.0
	single := mzFor(t, mass, ProtonatedAdduct)
	double := mzFor(t, mass, DoublyProtonatedAdduct)

	r := NewResolver(ResolverConfig{})
	for _, peaks := range [][]Peak{
		{{MZ: single, Intensity: 1e6}, {MZ: double, Intensity: 3e5}},
		{{MZ: double, Intensity: 3e5}, {MZ: single, Intensity: 1e6}},
	} {
		got, ok := r.Resolve(NewPeakSet(peaks))
		if !ok || got != ProtonatedAdduct {
			t.Errorf("Resolve() = %q, %v, want %s", got, ok, ProtonatedAdduct)
		}
	}
}

func TestResolveNoEvidence(t *testing.T) {
	r := NewResolver(ResolverConfig{Table: smallTable("[M+H]+", "[M+Na]+")})

	tests := []struct {
		name  string
		peaks []Peak
	}{
		{"empty", nil},
		{"single", []Peak{{MZ: 760.5851, Intensity: 1e6}}},
		{"duplicates collapse to one", []Peak{{MZ: 760.5851, Intensity: 1e6}, {MZ: 760.5851, Intensity: 1e6}}},
		{"unrelated", []Peak{{MZ: 300.0, Intensity: 1e6}, {MZ: 455.5, Intensity: 1e5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := r.Resolve(NewPeakSet(tt.peaks)); ok {
				t.Errorf("Resolve() = %s, expected no adduct", got)
			}
		})
	}
}

func TestResolverTolerance(t *testing.T) {
	const mass = 600.0
	peaks := NewPeakSet([]Peak{
		{MZ: mzFor(t, mass, "[M+H]+"), Intensity: 1e6},
		{MZ: mzFor(t, mass, "[M+Na]+") + 0.1, Intensity: 1e5},
	})
	table := smallTable("[M+H]+", "[M+Na]+")

	if _, ok := NewResolver(ResolverConfig{Table: table}).Resolve(peaks); ok {
		t.Error("Expected no match with the default tolerance")
	}

	got, ok := NewResolver(ResolverConfig{Table: table, Tolerance: 0.2}).Resolve(peaks)
	if !ok || got != "[M+H]+" {
		t.Errorf("Resolve() = %q, %v, want [M+H]+", got, ok)
	}
}

func TestResolverSkipsUnknownAdducts(t *testing.T) {
	// Only one usable hypothesis: no pair of distinct adducts can agree
	r := NewResolver(ResolverConfig{Table: smallTable("[M+H]+")})
	peaks := NewPeakSet([]Peak{{MZ: 500.0, Intensity: 1}, {MZ: 999.0, Intensity: 1}})
	if got, ok := r.Resolve(peaks); ok {
		t.Errorf("Resolve() = %s, expected no adduct", got)
	}
}
