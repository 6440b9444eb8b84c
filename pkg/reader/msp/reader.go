// Package msp provides a streaming reader for MSP-style lipid feature lists.
//
// Each entry is a block of "Key: value" header lines followed by
// "Num peaks: N" and N lines of "mz<whitespace>intensity" describing the
// cluster of co-eluting peaks:
//
//	Name: PC 34:1
//	Class: PC
//	Carbons: 34
//	DoubleBonds: 1
//	MZ: 760.5851
//	Intensity: 1200000
//	RT: 6.52
//	Mode: positive
//	Num peaks: 2
//	760.5851	1200000
//	1520.1629	40000
//
// Entries are separated by blank lines.
package msp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Reader provides streaming access to MSP feature files
type Reader struct {
	scanner        *bufio.Scanner
	source         string
	lineNum        int
	currentFeature *core.Feature
	err            error
}

// NewReader creates a new MSP reader. source is recorded on every feature
// (typically the file name).
func NewReader(r io.Reader, source string) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
		source:  source,
	}
}

// Next advances to the next feature. Returns false when no more features or error.
func (r *Reader) Next() bool {
	r.currentFeature = nil

	f, err := r.readFeature()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentFeature = f
	return true
}

// Feature returns the current feature
func (r *Reader) Feature() *core.Feature {
	return r.currentFeature
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readFeature reads a single feature entry from the file
func (r *Reader) readFeature() (*core.Feature, error) {
	f := &core.Feature{
		SourceFile: r.source,
		Peaks:      []core.Peak{},
	}

	started := false
	numPeaks := 0
	inPeaks := false
	peaksRead := 0

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" {
			// Skip empty lines between entries
			if !started {
				continue
			}
			if inPeaks {
				return nil, fmt.Errorf("line %d: expected %d peaks, got %d", r.lineNum, numPeaks, peaksRead)
			}
			return nil, fmt.Errorf("line %d: entry %s has no 'Num peaks' line", r.lineNum, f.Lipid.Name)
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !started {
			started = true
			f.SourceLine = r.lineNum
		}

		if inPeaks {
			peak, err := r.parsePeak(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			f.Peaks = append(f.Peaks, peak)
			peaksRead++
			if peaksRead >= numPeaks {
				return f, nil
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'Key: value', got '%s'", r.lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "Num peaks" {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid num peaks '%s'", r.lineNum, value)
			}
			numPeaks = n
			if numPeaks == 0 {
				return f, nil
			}
			inPeaks = true
			continue
		}

		if err := r.parseHeader(f, key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if inPeaks {
		return nil, fmt.Errorf("line %d: unexpected end of file, expected %d peaks, got %d", r.lineNum, numPeaks, peaksRead)
	}
	if started {
		return nil, fmt.Errorf("line %d: unexpected end of file in entry %s", r.lineNum, f.Lipid.Name)
	}

	return nil, io.EOF
}

// parseHeader stores a single header field. Unknown keys are ignored.
func (r *Reader) parseHeader(f *core.Feature, key, value string) error {
	var err error

	switch key {
	case "Name":
		f.Lipid.Name = value
	case "Class":
		f.Lipid.Class = value
	case "Carbons":
		f.Lipid.Carbons, err = strconv.Atoi(value)
	case "DoubleBonds":
		f.Lipid.DoubleBonds, err = strconv.Atoi(value)
	case "MZ", "PrecursorMZ":
		f.MZ, err = strconv.ParseFloat(value, 64)
	case "Intensity":
		f.Intensity, err = strconv.ParseFloat(value, 64)
	case "RT", "RetentionTime":
		f.RetentionTime, err = strconv.ParseFloat(value, 64)
	case "Mode":
		f.Mode, err = core.ParseIonizationMode(value)
	}

	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", key, value, err)
	}
	return nil
}

// parsePeak parses a single peak line (format: "mz\tintensity")
func (r *Reader) parsePeak(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	return core.Peak{MZ: mz, Intensity: intensity}, nil
}
