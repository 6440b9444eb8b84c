// Package sqlite provides SQLite database writing for lipid annotations
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/LipidKey/pkg/adduct"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Writer handles writing annotations to SQLite database files
type Writer struct {
	db             *sql.DB
	outputPath     string
	lipidStmt      *sql.Stmt
	annotationStmt *sql.Stmt
	peakStmt       *sql.Stmt
	lipidIDs       map[core.Lipid]int64
	annotationID   int64
	finalized      bool
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:           db,
		outputPath:   outputPath,
		lipidIDs:     make(map[core.Lipid]int64),
		annotationID: 1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS LipidTable (
		LipidId INTEGER PRIMARY KEY,
		Name TEXT,
		Class TEXT,
		Carbons INTEGER,
		DoubleBonds INTEGER,
		ClassRank INTEGER
	);

	CREATE TABLE IF NOT EXISTS AnnotationTable (
		AnnotationId INTEGER PRIMARY KEY,
		LipidId INTEGER REFERENCES LipidTable(LipidId),
		MZ DOUBLE,
		Intensity DOUBLE,
		RetentionTime DOUBLE,
		IonizationMode TEXT,
		Adduct TEXT,
		NeutralMass DOUBLE,
		Score INTEGER,
		ScoresApplied INTEGER,
		NormalizedScore DOUBLE,
		PeakCount INTEGER,
		blobMass BLOB,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS PeakTable (
		AnnotationId INTEGER REFERENCES AnnotationTable(AnnotationId),
		MZ DOUBLE,
		Intensity DOUBLE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		AdductTable TEXT,
		Tolerance DOUBLE,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.lipidStmt, err = w.db.Prepare(`
		INSERT INTO LipidTable (
			LipidId, Name, Class, Carbons, DoubleBonds, ClassRank
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lipid statement: %w", err)
	}

	w.annotationStmt, err = w.db.Prepare(`
		INSERT INTO AnnotationTable (
			AnnotationId, LipidId, MZ, Intensity, RetentionTime,
			IonizationMode, Adduct, NeutralMass, Score, ScoresApplied,
			NormalizedScore, PeakCount, blobMass, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation statement: %w", err)
	}

	w.peakStmt, err = w.db.Prepare(`
		INSERT INTO PeakTable (AnnotationId, MZ, Intensity) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peak statement: %w", err)
	}

	return nil
}

// lipidID returns the row id of a lipid, inserting it on first use
func (w *Writer) lipidID(l core.Lipid) (int64, error) {
	if id, ok := w.lipidIDs[l]; ok {
		return id, nil
	}

	id := int64(len(w.lipidIDs) + 1)
	_, err := w.lipidStmt.Exec(id, l.Name, l.Class, l.Carbons, l.DoubleBonds, core.ClassRank(l.Class))
	if err != nil {
		return 0, fmt.Errorf("failed to insert lipid: %w", err)
	}
	w.lipidIDs[l] = id
	return id, nil
}

// WriteAnnotation writes a single annotation and its grouped signals. The
// neutral mass is derived from the resolved adduct using table; unresolved
// values are stored as NULL.
func (w *Writer) WriteAnnotation(a *core.Annotation, table *adduct.Table) error {
	lipidID, err := w.lipidID(a.Lipid())
	if err != nil {
		return err
	}

	var adductName, neutralMass, normScore interface{}
	if name, ok := a.Adduct(); ok {
		adductName = name
		if mass, ok := table.MassFromMZ(a.MZ(), name); ok {
			neutralMass = mass
		}
	}
	if s, err := a.NormalizedScore(); err == nil {
		normScore = s
	}

	peaks := a.GroupedSignals()
	massBlob := encodePeaksFloat64(peaks, true)
	intensityBlob := encodePeaksFloat64(peaks, false)

	_, err = w.annotationStmt.Exec(
		w.annotationID,    // AnnotationId
		lipidID,           // LipidId
		a.MZ(),            // MZ
		a.Intensity(),     // Intensity
		a.RetentionTime(), // RetentionTime
		a.Mode().String(), // IonizationMode
		adductName,        // Adduct
		neutralMass,       // NeutralMass
		a.Score(),         // Score
		a.ScoresApplied(), // ScoresApplied
		normScore,         // NormalizedScore
		len(peaks),        // PeakCount
		massBlob,          // blobMass
		intensityBlob,     // blobIntensity
	)
	if err != nil {
		return fmt.Errorf("failed to insert annotation: %w", err)
	}

	for _, p := range peaks {
		if _, err := w.peakStmt.Exec(w.annotationID, p.MZ, p.Intensity); err != nil {
			return fmt.Errorf("failed to insert peak: %w", err)
		}
	}

	w.annotationID++
	return nil
}

// encodePeaksFloat64 encodes peak data as little-endian float64 blob
func encodePeaksFloat64(peaks []core.Peak, useMZ bool) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, peak := range peaks {
		var value float64
		if useMZ {
			value = peak.MZ
		} else {
			value = peak.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// Finalize writes the header table and closes the database
func (w *Writer) Finalize(adductTable string, tolerance float64) error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, AdductTable, Tolerance, Description)
		VALUES (?, ?, ?, ?, ?)
	`, schemaVersion, time.Now().Format(headerDateFormat), adductTable, tolerance, "")
	if err != nil {
		w.close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return w.close()
}

// Close closes the database without writing the header table. It is a
// no-op after Finalize.
func (w *Writer) Close() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	return w.close()
}

func (w *Writer) close() error {
	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.lipidStmt, w.annotationStmt, w.peakStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
