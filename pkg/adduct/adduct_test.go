package adduct

import (
	"errors"
	"math"
	"testing"
)

func TestParseMultimerAndCharge(t *testing.T) {
	tests := []struct {
		adduct       string
		wantMultimer int
		wantCharge   int
	}{
		{"[M+H]+", 1, 1},
		{"[2M+H]+", 2, 1},
		{"[M+2H]2+", 1, 2},
		{"[3M+H]2+", 3, 2},
		{"[M+3H]3+", 1, 3},
		{"[10M+H]12+", 10, 12},
		{"[M-H]-", 1, 1},
		{"[2M-2H]2-", 2, 2},
		{"M+H", 1, 1}, // malformed: permissive defaults
		{"", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.adduct, func(t *testing.T) {
			if got := ParseMultimer(tt.adduct); got != tt.wantMultimer {
				t.Errorf("ParseMultimer(%q) = %d, want %d", tt.adduct, got, tt.wantMultimer)
			}
			if got := ParseCharge(tt.adduct); got != tt.wantCharge {
				t.Errorf("ParseCharge(%q) = %d, want %d", tt.adduct, got, tt.wantCharge)
			}
		})
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		adduct  string
		want    Descriptor
		wantErr bool
	}{
		{"[M+H]+", Descriptor{Multimer: 1, Charge: 1, Sign: Positive}, false},
		{"[2M+Na]+", Descriptor{Multimer: 2, Charge: 1, Sign: Positive}, false},
		{"[M+2H]2+", Descriptor{Multimer: 1, Charge: 2, Sign: Positive}, false},
		{"[M-H]-", Descriptor{Multimer: 1, Charge: 1, Sign: Negative}, false},
		{"M+H", Descriptor{}, true},
		{"[M+H]", Descriptor{}, true},
		{"[0M+H]+", Descriptor{}, true},
		{"[M+H]0+", Descriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.adduct, func(t *testing.T) {
			got, err := ParseDescriptor(tt.adduct)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDescriptor(%q) error = %v, wantErr %v", tt.adduct, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedAdduct) {
					t.Errorf("Expected ErrMalformedAdduct, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseDescriptor(%q) = %+v, want %+v", tt.adduct, got, tt.want)
			}
		})
	}
}

func TestMassFromMZ(t *testing.T) {
	table := PositiveTable()

	tests := []struct {
		name     string
		mz       float64
		adduct   string
		wantMass float64
	}{
		{"protonated", 760.5851, "[M+H]+", 759.577824},
		{"dimer", 1519.163, "[2M+H]+", 759.077862},
		{"doubly charged", 380.7962, "[M+2H]2+", 759.577848},
		{"sodiated", 782.567, "[M+Na]+", 759.577782},
		{"water loss", 742.5745, "[M+H-H2O]+", 759.5778},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MassFromMZ(table, tt.mz, tt.adduct)
			if !ok {
				t.Fatalf("MassFromMZ(%v, %q) reported unknown adduct", tt.mz, tt.adduct)
			}
			if math.Abs(got-tt.wantMass) > 1e-6 {
				t.Errorf("MassFromMZ() = %.6f, want %.6f", got, tt.wantMass)
			}
		})
	}
}

func TestMassFromMZUnknownAdduct(t *testing.T) {
	table := PositiveTable()
	for _, mz := range []float64{0, 100.5, 760.5851, 2000} {
		if _, ok := MassFromMZ(table, mz, "[M+Xe]+"); ok {
			t.Errorf("MassFromMZ(%v, unknown) should report not found", mz)
		}
		if _, ok := MZFromMass(table, mz, "[M+Xe]+"); ok {
			t.Errorf("MZFromMass(%v, unknown) should report not found", mz)
		}
	}
	if _, ok := MassFromMZ(nil, 100, "[M+H]+"); ok {
		t.Error("MassFromMZ with nil table should report not found")
	}
}

func TestMassMZRoundTrip(t *testing.T) {
	table := PositiveTable()
	for _, name := range table.Names() {
		for _, mz := range []float64{150.0, 500.25, 760.5851, 1520.1629} {
			mass, ok := table.MassFromMZ(mz, name)
			if !ok {
				t.Fatalf("MassFromMZ(%v, %q) reported unknown adduct", mz, name)
			}
			back, ok := table.MZFromMass(mass, name)
			if !ok {
				t.Fatalf("MZFromMass(%v, %q) reported unknown adduct", mass, name)
			}
			if math.Abs(back-mz) > 1e-9 {
				t.Errorf("%s: round trip of %.6f gave %.6f", name, mz, back)
			}
		}
	}
}

func TestZeroMultimerOrChargeRejected(t *testing.T) {
	tests := []struct {
		name   string
		adduct string
	}{
		{"zero multimer", "[0M+H]+"},
		{"zero charge", "[M+H]0+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			table.Add(tt.adduct, -1.007276)

			if _, ok := table.Lookup(tt.adduct); !ok {
				t.Fatalf("%s should be in the table", tt.adduct)
			}
			if _, ok := MassFromMZ(table, 760.5851, tt.adduct); ok {
				t.Errorf("MassFromMZ(%q) should report no result", tt.adduct)
			}
			if _, ok := MZFromMass(table, 759.5778, tt.adduct); ok {
				t.Errorf("MZFromMass(%q) should report no result", tt.adduct)
			}
		})
	}
}

func TestZeroOffsetIsKnown(t *testing.T) {
	table := NewTable()
	table.Add("[M]+", 0.0)

	mass, ok := MassFromMZ(table, 500.0, "[M]+")
	if !ok {
		t.Fatal("zero offset adduct must be found")
	}
	if mass != 500.0 {
		t.Errorf("Expected mass 500.0, got %f", mass)
	}
}

func TestPPMIncrement(t *testing.T) {
	tests := []struct {
		name         string
		experimental float64
		theoretical  float64
		want         int
	}{
		{"10 ppm above", 100.0010, 100.0000, 10},
		{"10 ppm below", 99.9990, 100.0000, 10},
		{"exact", 760.5851, 760.5851, 0},
		{"rounds to nearest", 1000.0026, 1000.0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PPMIncrement(tt.experimental, tt.theoretical)
			if err != nil {
				t.Fatalf("PPMIncrement() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PPMIncrement(%v, %v) = %d, want %d", tt.experimental, tt.theoretical, got, tt.want)
			}
		})
	}

	_, err := PPMIncrement(1.0, 0.0)
	if !errors.Is(err, ErrZeroTheoreticalMass) {
		t.Errorf("Expected ErrZeroTheoreticalMass, got %v", err)
	}
}

func TestDeltaFromPPM(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		ppm  int
		want float64
	}{
		{"100 Da at 10 ppm", 100.0, 10, 0.001},
		{"760 Da at 5 ppm", 760.5851, 5, 0.003803},
		{"negative ppm is absolute", 500.0, -10, 0.005},
		{"zero", 0.0, 10, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaFromPPM(tt.mass, tt.ppm)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DeltaFromPPM(%v, %d) = %v, want %v", tt.mass, tt.ppm, got, tt.want)
			}
		})
	}
}
