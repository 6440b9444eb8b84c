package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/LipidKey/pkg/config"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/filter"
	"github.com/ChrisMcGann/LipidKey/pkg/reader/msp"
	"github.com/ChrisMcGann/LipidKey/pkg/writer/sqlite"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate a feature list and write a SQLite database",
	Long: `Resolve the adduct of every feature in an MSP-style feature list from its
cluster of co-eluting peaks and write the annotations to a SQLite database.

Examples:
  # Annotate with the built-in positive mode adduct table
  lipidkey annotate --in features.msp --out annotations.db

  # Use a custom adduct table and a tighter tolerance
  lipidkey annotate --in features.msp --out annotations.db --adducts adducts.csv --tolerance 0.005

  # Drop minor peaks before resolution
  lipidkey annotate --in features.msp --out annotations.db --top-n 20 --cutoff 1`,
	RunE: runAnnotate,
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	// Validate input file exists
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	if chunkSize < 1 {
		return fmt.Errorf("invalid chunk size %d, must be at least 1", chunkSize)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	resolver, err := cfg.NewResolver()
	if err != nil {
		return fmt.Errorf("failed to load adduct table: %w", err)
	}

	fmt.Printf("Annotating %s to %s...\n", inputFile, outputFile)
	fmt.Printf("Adduct table: %s (%d adducts)\n", adductTableName(cfg), resolver.Table().Len())
	fmt.Printf("Tolerance: %g Da\n", cfg.Tolerance)
	fmt.Printf("Workers: %d\n", cfg.Workers)
	if cfg.Filter.TopN > 0 {
		fmt.Printf("Top N filter: %d\n", cfg.Filter.TopN)
	}
	if cfg.Filter.IntensityCutoff > 0 {
		fmt.Printf("Intensity cutoff: %.1f%%\n", cfg.Filter.IntensityCutoff)
	}

	inFile, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	reader := msp.NewReader(inFile, inputFile)

	writer, err := sqlite.NewWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	filterConfig := cfg.PeakFilter()

	count := 0
	resolved := 0
	skipped := 0
	batch := make([]*core.Feature, 0, chunkSize)

	flush := func() error {
		annotations, err := annotateFeatures(cmd.Context(), batch, resolver, cfg.Workers)
		if err != nil {
			return err
		}
		for _, a := range annotations {
			if err := writer.WriteAnnotation(a, resolver.Table()); err != nil {
				return fmt.Errorf("failed to write annotation %s: %w", a.Lipid().Name, err)
			}
			if _, ok := a.Adduct(); ok {
				resolved++
			}

			count++
			if count%1000 == 0 {
				fmt.Printf("Processed %d features...\n", count)
			}
		}
		batch = batch[:0]
		return nil
	}

	for reader.Next() {
		f := reader.Feature()

		// Remove zero intensity peaks
		filter.RemoveZeroIntensityPeaks(f)

		// Apply filters
		filterConfig.Apply(f)

		// Validate feature
		if err := f.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid feature %s (%s:%d): %v\n", f.Name(), f.SourceFile, f.SourceLine, err)
			skipped++
			continue
		}

		batch = append(batch, f)
		if len(batch) >= chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := reader.Err(); err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	// Finalize database
	if err := writer.Finalize(adductTableName(cfg), cfg.Tolerance); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Printf("\nAnnotation complete!\n")
	fmt.Printf("Processed: %d features\n", count)
	fmt.Printf("Resolved: %d adducts\n", resolved)
	if skipped > 0 {
		fmt.Printf("Skipped: %d features (validation errors)\n", skipped)
	}
	fmt.Printf("Output: %s\n", outputFile)

	return nil
}

// annotateFeatures builds one annotation per feature using up to workers
// goroutines. The result keeps the order of features.
func annotateFeatures(ctx context.Context, features []*core.Feature, resolver *core.Resolver, workers int) ([]*core.Annotation, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers < 1 {
		workers = 1
	}

	annotations := make([]*core.Annotation, len(features))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range features {
		i, f := i, f // per-iteration copy (go 1.22+ loop semantics under go 1.21)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			annotations[i] = core.NewAnnotationFromFeature(f, resolver)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return annotations, nil
}

func adductTableName(cfg *config.Config) string {
	if cfg.AdductTable == "" {
		return "positive"
	}
	return cfg.AdductTable
}
