package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoScoresApplied  = errors.New("no scores applied to annotation")
	ErrAdductAlreadySet = errors.New("adduct already set")
)

// Annotation is the assignment of a candidate lipid to a detected feature.
// Lipid, m/z and retention time form its identity; the adduct is fixed once
// set and the score accumulates through AddScore.
//
// An Annotation is not safe for concurrent mutation.
type Annotation struct {
	lipid         Lipid
	mz            float64
	intensity     float64 // intensity of the most abundant peak in the cluster
	retentionTime float64
	mode          IonizationMode
	peaks         PeakSet

	adduct    string
	hasAdduct bool

	score         int
	scoresApplied int
}

// AnnotationKey is the comparable identity of an annotation, suitable as a
// map key.
type AnnotationKey struct {
	Lipid         Lipid
	MZ            float64
	RetentionTime float64
}

// NewAnnotation builds an annotation and, if peaks is non-empty and a
// resolver is given, resolves its adduct from the peak cluster. The peaks
// are copied, ordered by m/z and deduplicated.
func NewAnnotation(lipid Lipid, mz, intensity, retentionTime float64,
	mode IonizationMode, peaks []Peak, resolver *Resolver) *Annotation {
	a := &Annotation{
		lipid:         lipid,
		mz:            mz,
		intensity:     intensity,
		retentionTime: retentionTime,
		mode:          mode,
		peaks:         NewPeakSet(peaks),
	}

	if resolver != nil && a.peaks.Len() > 0 {
		if name, ok := resolver.Resolve(a.peaks); ok {
			a.adduct = name
			a.hasAdduct = true
		}
	}
	return a
}

// NewAnnotationFromFeature is NewAnnotation for a feature read from a
// feature list.
func NewAnnotationFromFeature(f *Feature, resolver *Resolver) *Annotation {
	return NewAnnotation(f.Lipid, f.MZ, f.Intensity, f.RetentionTime, f.Mode, f.Peaks, resolver)
}

// Lipid returns the candidate lipid
func (a *Annotation) Lipid() Lipid { return a.lipid }

// MZ returns the m/z of the primary peak
func (a *Annotation) MZ() float64 { return a.mz }

// Intensity returns the intensity of the most abundant peak
func (a *Annotation) Intensity() float64 { return a.intensity }

// RetentionTime returns the retention time in minutes
func (a *Annotation) RetentionTime() float64 { return a.retentionTime }

// Mode returns the ionization mode
func (a *Annotation) Mode() IonizationMode { return a.mode }

// CarbonCount returns the carbon count of the lipid
func (a *Annotation) CarbonCount() int { return a.lipid.Carbons }

// DoubleBondCount returns the double bond count of the lipid
func (a *Annotation) DoubleBondCount() int { return a.lipid.DoubleBonds }

// LipidClass returns the lipid class code
func (a *Annotation) LipidClass() string { return a.lipid.Class }

// ClassRank returns the tie-break rank of the lipid class
func (a *Annotation) ClassRank() int { return ClassRank(a.lipid.Class) }

// GroupedSignals returns a copy of the peak cluster in m/z order
func (a *Annotation) GroupedSignals() []Peak {
	return a.peaks.Peaks()
}

// Adduct returns the resolved adduct. The second value is false while the
// adduct is unknown.
func (a *Annotation) Adduct() (string, bool) {
	return a.adduct, a.hasAdduct
}

// SetAdduct assigns the adduct of an annotation that has none yet
func (a *Annotation) SetAdduct(name string) error {
	if a.hasAdduct {
		return fmt.Errorf("%w: %s", ErrAdductAlreadySet, a.adduct)
	}
	a.adduct = name
	a.hasAdduct = true
	return nil
}

// AddScore adds delta to the score and counts one more applied rule
func (a *Annotation) AddScore(delta int) {
	a.score += delta
	a.scoresApplied++
}

// Score returns the accumulated score
func (a *Annotation) Score() int { return a.score }

// ScoresApplied returns how many times AddScore was called
func (a *Annotation) ScoresApplied() int { return a.scoresApplied }

// NormalizedScore returns the mean score per applied rule. It fails with
// ErrNoScoresApplied before the first AddScore.
func (a *Annotation) NormalizedScore() (float64, error) {
	if a.scoresApplied == 0 {
		return 0, ErrNoScoresApplied
	}
	return float64(a.score) / float64(a.scoresApplied), nil
}

// Key returns the identity of the annotation
func (a *Annotation) Key() AnnotationKey {
	return AnnotationKey{Lipid: a.lipid, MZ: a.mz, RetentionTime: a.retentionTime}
}

// Equal reports whether two annotations share lipid, m/z and retention time
func (a *Annotation) Equal(b *Annotation) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Key() == b.Key()
}

func (a *Annotation) String() string {
	adduct := "unknown"
	if a.hasAdduct {
		adduct = a.adduct
	}
	return fmt.Sprintf("%s mz=%.4f rt=%.2f adduct=%s intensity=%.1f score=%d",
		a.lipid.Name, a.mz, a.retentionTime, adduct, a.intensity, a.score)
}
