package core

import (
	"fmt"
	"math"
	"sort"
)

// Peak represents a single observed m/z, intensity pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

func (p Peak) less(q Peak) bool {
	if p.MZ != q.MZ {
		return p.MZ < q.MZ
	}
	return p.Intensity < q.Intensity
}

// PeakSet is an immutable, m/z ordered set of peaks without duplicates.
type PeakSet struct {
	peaks []Peak
}

// NewPeakSet copies peaks, sorts them by m/z and drops exact duplicates.
// Peaks sharing an m/z but not an intensity are both kept, ordered by
// intensity. The caller's slice is never retained.
func NewPeakSet(peaks []Peak) PeakSet {
	sorted := make([]Peak, len(peaks))
	copy(sorted, peaks)
	SortPeaks(sorted)

	k := 0
	for i, p := range sorted {
		if i > 0 && p == sorted[k-1] {
			continue
		}
		sorted[k] = p
		k++
	}
	return PeakSet{peaks: sorted[:k]}
}

// Len returns the number of peaks in the set
func (s PeakSet) Len() int {
	return len(s.peaks)
}

// At returns the i-th peak in m/z order
func (s PeakSet) At(i int) Peak {
	return s.peaks[i]
}

// Peaks returns a copy of the peaks in m/z order
func (s PeakSet) Peaks() []Peak {
	out := make([]Peak, len(s.peaks))
	copy(out, s.peaks)
	return out
}

// SortPeaks sorts peaks by m/z in ascending order, then by intensity.
func SortPeaks(peaks []Peak) {
	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].less(peaks[j])
	})
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func ArePeaksSorted(peaks []Peak) bool {
	for i := 1; i < len(peaks); i++ {
		if peaks[i].MZ < peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// validatePeaks returns one message per invalid peak
func validatePeaks(peaks []Peak) []string {
	var errs []string
	for i, peak := range peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}
	return errs
}
