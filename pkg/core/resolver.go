package core

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ChrisMcGann/LipidKey/pkg/adduct"
)

// Resolver defaults
const (
	DefaultTolerance = 0.01 // Da

	ProtonatedAdduct       = "[M+H]+"
	DoublyProtonatedAdduct = "[M+2H]2+"
)

// ResolverConfig holds the adduct table and tolerances used for inference.
// Zero values are replaced by defaults.
type ResolverConfig struct {
	Table     *adduct.Table // nil = adduct.PositiveTable()
	Tolerance float64       // mass agreement window in Da
	WaterLoss float64       // neutral water loss in Da
}

// Resolver infers the adduct of a candidate from its cluster of co-eluting
// peaks. A Resolver is read-only after construction and may be shared
// between goroutines as long as its table is not modified.
type Resolver struct {
	table     *adduct.Table
	names     []string
	tolerance float64
	waterLoss float64
}

// NewResolver creates a resolver from cfg
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Table == nil {
		cfg.Table = adduct.PositiveTable()
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.WaterLoss <= 0 {
		cfg.WaterLoss = adduct.WaterMass
	}
	return &Resolver{
		table:     cfg.Table,
		names:     cfg.Table.Names(),
		tolerance: cfg.Tolerance,
		waterLoss: cfg.WaterLoss,
	}
}

// Table returns the adduct table used by the resolver
func (r *Resolver) Table() *adduct.Table {
	return r.table
}

// Resolve returns the adduct best supported by the peak cluster.
// Passes run in priority order and the first match wins:
//  1. two peaks whose masses agree under two different adducts
//  2. two peaks separated by a water loss (checked per pair, inside pass 1)
//  3. [M+H]+ / [M+2H]2+ charge state pair
//
// Clusters with fewer than two peaks never resolve.
func (r *Resolver) Resolve(peaks PeakSet) (string, bool) {
	if peaks.Len() < 2 {
		return "", false
	}
	if name, ok := r.crossAdductPass(peaks); ok {
		return name, true
	}
	return r.chargeStatePass(peaks)
}

// hypothesis is the mass implied by one peak under one adduct
type hypothesis struct {
	mass  float64
	known bool
}

// hypotheses computes the implied mass of every peak under every adduct,
// indexed [peak][adduct] in table order.
func (r *Resolver) hypotheses(peaks PeakSet) [][]hypothesis {
	h := make([][]hypothesis, peaks.Len())
	for i := range h {
		h[i] = make([]hypothesis, len(r.names))
		mz := peaks.At(i).MZ
		for k, name := range r.names {
			h[i][k].mass, h[i][k].known = r.table.MassFromMZ(mz, name)
		}
	}
	return h
}

// crossAdductPass looks for two peaks explained by the same molecule under
// two different adducts. The adduct of the lower m/z peak is returned.
// When a pair has no mass agreement, it falls back to the water-loss check.
func (r *Resolver) crossAdductPass(peaks PeakSet) (string, bool) {
	h := r.hypotheses(peaks)
	n := peaks.Len()

	for i := 0; i < n; i++ {
		mz1 := peaks.At(i).MZ
		for a1, name1 := range r.names {
			if !h[i][a1].known {
				continue
			}
			mass1 := h[i][a1].mass

			for j := i + 1; j < n; j++ {
				mz2 := peaks.At(j).MZ

				for a2, name2 := range r.names {
					if a1 == a2 || !h[j][a2].known {
						continue
					}
					if scalar.EqualWithinAbs(mass1, h[j][a2].mass, r.tolerance) {
						if mz1 < mz2 {
							return name1, true
						}
						return name2, true
					}
				}

				if r.isWaterLoss(mz1, mz2) {
					if name, ok := r.firstKnownAdduct(math.Max(mz1, mz2)); ok {
						return name, true
					}
				}
			}
		}
	}
	return "", false
}

// isWaterLoss reports whether two m/z values differ by one water molecule
func (r *Resolver) isWaterLoss(mz1, mz2 float64) bool {
	return scalar.EqualWithinAbs(math.Abs(mz1-mz2), r.waterLoss, r.tolerance)
}

// firstKnownAdduct returns the first adduct in table order that converts mz
func (r *Resolver) firstKnownAdduct(mz float64) (string, bool) {
	for _, name := range r.names {
		if _, ok := r.table.MassFromMZ(mz, name); ok {
			return name, true
		}
	}
	return "", false
}

// chargeStatePass checks every pair for a singly and doubly protonated form
// of the same molecule, in both orders. A match always yields [M+H]+.
func (r *Resolver) chargeStatePass(peaks PeakSet) (string, bool) {
	n := peaks.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			mz1 := peaks.At(i).MZ
			mz2 := peaks.At(j).MZ
			if r.sameMass(mz1, ProtonatedAdduct, mz2, DoublyProtonatedAdduct) ||
				r.sameMass(mz2, ProtonatedAdduct, mz1, DoublyProtonatedAdduct) {
				return ProtonatedAdduct, true
			}
		}
	}
	return "", false
}

// sameMass reports whether mz1 under adduct1 and mz2 under adduct2 imply the
// same monoisotopic mass
func (r *Resolver) sameMass(mz1 float64, adduct1 string, mz2 float64, adduct2 string) bool {
	m1, ok1 := r.table.MassFromMZ(mz1, adduct1)
	m2, ok2 := r.table.MassFromMZ(mz2, adduct2)
	return ok1 && ok2 && scalar.EqualWithinAbs(m1, m2, r.tolerance)
}
