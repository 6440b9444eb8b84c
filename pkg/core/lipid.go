// Package core provides the lipid annotation model and the adduct resolver
// used by LipidKey.
package core

import (
	"fmt"
	"strings"
)

// IonizationMode is the polarity the features were acquired in
type IonizationMode int

const (
	PositiveMode IonizationMode = iota
	NegativeMode
)

func (m IonizationMode) String() string {
	if m == NegativeMode {
		return "negative"
	}
	return "positive"
}

// ParseIonizationMode accepts "positive"/"pos"/"+" and "negative"/"neg"/"-"
func ParseIonizationMode(s string) (IonizationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos", "+":
		return PositiveMode, nil
	case "negative", "neg", "-":
		return NegativeMode, nil
	}
	return PositiveMode, fmt.Errorf("invalid ionization mode '%s'", s)
}

// Lipid is a candidate lipid species. It is a comparable value and takes
// part in annotation identity.
type Lipid struct {
	Name        string // Display name, e.g. "PC 34:1"
	Class       string // Lipid class code, e.g. "PC"
	Carbons     int
	DoubleBonds int
}

// classRanks orders lipid classes for tie-breaking between annotations
var classRanks = map[string]int{
	"PG": 1,
	"PE": 2,
	"PI": 3,
	"PA": 4,
	"PS": 5,
	"PC": 6,
}

// UnrankedClass is the rank of every class not listed in classRanks
const UnrankedClass = 100

// ClassRank returns the tie-break rank of a lipid class code.
// Lower ranks sort first: PG < PE < PI < PA < PS < PC < everything else.
func ClassRank(class string) int {
	if r, ok := classRanks[class]; ok {
		return r
	}
	return UnrankedClass
}
