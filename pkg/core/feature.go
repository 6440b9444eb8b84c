package core

import (
	"fmt"
	"math"
	"strings"
)

// Feature is one detected signal as read from a feature list: the candidate
// lipid, the primary peak and the cluster of co-eluting peaks.
type Feature struct {
	Lipid         Lipid
	MZ            float64 // m/z of the primary peak
	Intensity     float64 // intensity of the most abundant peak in the cluster
	RetentionTime float64 // minutes
	Mode          IonizationMode
	Peaks         []Peak // grouped signals, any order

	// Internal tracking
	SourceFile string
	SourceLine int
}

// ValidationError represents an error found during feature validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a feature meets all requirements for annotation.
func (f *Feature) Validate() error {
	var errs []string

	if f.Lipid.Name == "" {
		errs = append(errs, "lipid name is required")
	}
	if f.Lipid.Carbons < 0 {
		errs = append(errs, "carbon count must be non-negative")
	}
	if f.Lipid.DoubleBonds < 0 {
		errs = append(errs, "double bond count must be non-negative")
	}
	if math.IsNaN(f.MZ) || f.MZ <= 0 {
		errs = append(errs, "m/z must be positive")
	}
	if math.IsNaN(f.RetentionTime) || f.RetentionTime < 0 {
		errs = append(errs, "retention time must be non-negative")
	}
	errs = append(errs, validatePeaks(f.Peaks)...)

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Feature",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Name returns the feature name in format "Lipid@mz"
func (f *Feature) Name() string {
	return fmt.Sprintf("%s@%.4f", f.Lipid.Name, f.MZ)
}
