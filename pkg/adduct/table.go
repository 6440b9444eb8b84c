package adduct

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Entry is a single adduct and the offset added to an observed m/z to undo
// the ionization (per charge).
type Entry struct {
	Name   string
	Offset float64
}

// Table stores adduct definitions in insertion order. Iteration order is
// part of the resolver's contract: the first matching adduct wins.
type Table struct {
	entries []Entry
	index   map[string]int // name -> position in entries
}

// NewTable creates an empty adduct table
func NewTable() *Table {
	return &Table{
		index: make(map[string]int),
	}
}

// Add adds an adduct, or updates the offset of an existing one without
// changing its position.
func (t *Table) Add(name string, offset float64) {
	if i, ok := t.index[name]; ok {
		t.entries[i].Offset = offset
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, Entry{Name: name, Offset: offset})
}

// Lookup returns the offset for an adduct name
func (t *Table) Lookup(name string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[name]
	if !ok {
		return 0, false
	}
	return t.entries[i].Offset, true
}

// Names returns the adduct names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the table entries in table order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of adducts in the table
func (t *Table) Len() int {
	return len(t.entries)
}

// MassFromMZ is MassFromMZ(t, mz, adduct)
func (t *Table) MassFromMZ(mz float64, adduct string) (float64, bool) {
	return MassFromMZ(t, mz, adduct)
}

// MZFromMass is MZFromMass(t, mass, adduct)
func (t *Table) MZFromMass(mass float64, adduct string) (float64, bool) {
	return MZFromMass(t, mass, adduct)
}

// LoadFromCSV appends adducts from a CSV file (format: name,offset).
// The first line is a header. Every name must be a well formed descriptor.
func (t *Table) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected 2 comma-separated fields", lineNum)
		}

		name := strings.TrimSpace(parts[0])
		offsetStr := strings.TrimSpace(parts[1])

		if _, err := ParseDescriptor(name); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		offset, err := strconv.ParseFloat(offsetStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid offset value '%s': %w", lineNum, offsetStr, err)
		}

		t.Add(name, offset)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// PositiveTable returns the positive ion mode adduct table.
// Offsets are per charge: mass = (mz + offset) * charge / multimer.
func PositiveTable() *Table {
	t := NewTable()

	t.Add("[M+H]+", -1.007276)
	t.Add("[2M+H]+", -1.007276)
	t.Add("[M+2H]2+", -1.007276)
	t.Add("[M+Na]+", -22.989218)
	t.Add("[M+K]+", -38.963158)
	t.Add("[M+NH4]+", -18.033823)
	t.Add("[M+H-H2O]+", 17.0033)
	t.Add("[M+3H]3+", -1.007276)
	t.Add("[M+H+NH4]2+", -9.52055)
	t.Add("[M+H+Na]2+", -11.998247)
	t.Add("[M+H+K]2+", -19.985217)
	t.Add("[M+2Na]2+", -22.989218)
	t.Add("[M+2H+Na]3+", -8.33459)
	t.Add("[M+H+2Na]3+", -15.662453)
	t.Add("[M+3Na]3+", -22.989218)
	t.Add("[2M+Na]+", -22.989218)
	t.Add("[2M+K]+", -38.963158)
	t.Add("[2M+NH4]+", -18.033823)

	return t
}
