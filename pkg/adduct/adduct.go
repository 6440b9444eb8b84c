// Package adduct provides adduct descriptor parsing and m/z <-> monoisotopic
// mass conversions.
package adduct

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gonum.org/v1/gonum/floats/scalar"
)

// Physical constants used by the adduct tables and the resolver
const (
	ProtonMass = 1.00727646688
	WaterMass  = 18.0106
)

var (
	ErrMalformedAdduct     = errors.New("malformed adduct descriptor")
	ErrUnknownAdduct       = errors.New("unknown adduct")
	ErrZeroTheoreticalMass = errors.New("theoretical mass must not be zero")
)

var (
	multimerRe = regexp.MustCompile(`\[(\d*)M`)
	chargeRe   = regexp.MustCompile(`\](\d*)([+-])$`)
)

// Sign is the polarity of an adduct ion
type Sign int

const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// Descriptor holds the structural parts of an adduct string like "[2M+H]2+"
type Descriptor struct {
	Multimer int
	Charge   int
	Sign     Sign
}

// ParseMultimer returns the number of molecules in the adduct ("[2M+H]+" -> 2).
// Missing digits and strings without a "[..M" prefix both yield 1.
func ParseMultimer(adduct string) int {
	m := multimerRe.FindStringSubmatch(adduct)
	if m == nil || m[1] == "" {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

// ParseCharge returns the charge magnitude of the adduct ("[M+2H]2+" -> 2).
// Missing digits and strings without a "]n+" or "]n-" suffix both yield 1.
func ParseCharge(adduct string) int {
	m := chargeRe.FindStringSubmatch(adduct)
	if m == nil || m[1] == "" {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

// ParseDescriptor is the strict counterpart of ParseMultimer and ParseCharge:
// it fails when either the multimer prefix or the charge suffix is missing.
func ParseDescriptor(adduct string) (Descriptor, error) {
	if !multimerRe.MatchString(adduct) {
		return Descriptor{}, fmt.Errorf("%w: %q has no [nM prefix", ErrMalformedAdduct, adduct)
	}
	m := chargeRe.FindStringSubmatch(adduct)
	if m == nil {
		return Descriptor{}, fmt.Errorf("%w: %q has no charge suffix", ErrMalformedAdduct, adduct)
	}

	d := Descriptor{
		Multimer: ParseMultimer(adduct),
		Charge:   ParseCharge(adduct),
		Sign:     Positive,
	}
	if m[2] == "-" {
		d.Sign = Negative
	}
	if d.Multimer == 0 || d.Charge == 0 {
		return Descriptor{}, fmt.Errorf("%w: %q has zero multimer or charge", ErrMalformedAdduct, adduct)
	}
	return d, nil
}

// MassFromMZ computes the monoisotopic mass of a signal at mz under the given
// adduct hypothesis. It returns false if the adduct is not in the table.
func MassFromMZ(t *Table, mz float64, adduct string) (float64, bool) {
	offset, ok := t.Lookup(adduct)
	if !ok {
		return 0, false
	}
	multimer := ParseMultimer(adduct)
	charge := ParseCharge(adduct)
	if charge == 0 || multimer == 0 {
		return 0, false
	}
	return (mz + offset) * float64(charge) / float64(multimer), true
}

// MZFromMass computes the m/z at which a molecule of the given monoisotopic
// mass is observed with the given adduct. It returns false if the adduct is
// not in the table.
func MZFromMass(t *Table, mass float64, adduct string) (float64, bool) {
	offset, ok := t.Lookup(adduct)
	if !ok {
		return 0, false
	}
	multimer := ParseMultimer(adduct)
	charge := ParseCharge(adduct)
	if charge == 0 || multimer == 0 {
		return 0, false
	}
	return mass*float64(multimer)/float64(charge) - offset, true
}

// PPMIncrement returns the deviation between an experimental and a theoretical
// mass in ppm, rounded to the nearest integer.
func PPMIncrement(experimental, theoretical float64) (int, error) {
	if theoretical == 0 {
		return 0, ErrZeroTheoreticalMass
	}
	return int(math.Round(math.Abs((experimental - theoretical) * 1000000 / theoretical))), nil
}

// DeltaFromPPM returns the absolute mass window (Da) that corresponds to a
// ppm tolerance around mass, rounded to micro-Dalton precision.
func DeltaFromPPM(mass float64, ppm int) float64 {
	return scalar.Round(math.Abs(mass*float64(ppm)/1000000), 6)
}
