// Package filter provides peak cluster filtering applied before adduct
// resolution
package filter

import (
	"sort"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64 // Keep only peaks above this % of base peak (0 = no cutoff)
}

// Apply applies all configured filters to the peak cluster of a feature
func (c *Config) Apply(f *core.Feature) {
	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(f)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(f)
	}

	// Ensure peaks are sorted after all filtering
	core.SortPeaks(f.Peaks)
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(f *core.Feature) {
	if len(f.Peaks) == 0 {
		return
	}

	// Find maximum intensity
	maxIntensity := 0.0
	for _, peak := range f.Peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * maxIntensity

	// Filter peaks
	var filtered []core.Peak
	for _, peak := range f.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	f.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(f *core.Feature) {
	if len(f.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending
	peaks := make([]core.Peak, len(f.Peaks))
	copy(peaks, f.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	// Keep only top N
	f.Peaks = peaks[:c.TopN]
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(f *core.Feature) {
	var filtered []core.Peak
	for _, peak := range f.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	f.Peaks = filtered
}

// BasePeak returns the most intense peak of the cluster. The second value
// is false for an empty cluster.
func BasePeak(f *core.Feature) (core.Peak, bool) {
	if len(f.Peaks) == 0 {
		return core.Peak{}, false
	}
	base := f.Peaks[0]
	for _, peak := range f.Peaks[1:] {
		if peak.Intensity > base.Intensity {
			base = peak
		}
	}
	return base, true
}
