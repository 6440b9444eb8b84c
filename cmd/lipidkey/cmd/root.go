// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/pkg/config"
)

var (
	// Flags shared by all commands
	configFile string
	adductCSV  string

	// Flags for annotate command
	inputFile     string
	outputFile    string
	tolerance     float64
	waterLossMass float64
	topN          int
	cutoffPercent float64
	workers       int
	chunkSize     int
)

var rootCmd = &cobra.Command{
	Use:   "lipidkey",
	Short: "LipidKey - Lipid adduct annotation tool",
	Long: `LipidKey annotates lipid feature lists with their most likely adduct,
inferred from the cluster of co-eluting peaks of each feature, and writes the
annotations to a SQLite database.

Also provides adduct mass arithmetic:
- Neutral mass from m/z and back
- PPM error increments and tolerance windows
- Built-in and custom adduct tables`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(massCmd)
	rootCmd.AddCommand(mzCmd)
	rootCmd.AddCommand(ppmCmd)
	rootCmd.AddCommand(adductsCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&adductCSV, "adducts", "", "Path to custom adduct table CSV (name,offset)")

	// Annotate command flags
	annotateCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input feature file (required)")
	annotateCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	annotateCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Mass agreement tolerance in Da (default from config, 0.01)")
	annotateCmd.Flags().Float64Var(&waterLossMass, "water-loss", 0, "Water loss mass in Da (default from config, 18.0106)")
	annotateCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only top N most intense peaks per cluster (0 = no limit)")
	annotateCmd.Flags().Float64Var(&cutoffPercent, "cutoff", 0, "Intensity cutoff as % of base peak (0 = no cutoff)")
	annotateCmd.Flags().IntVar(&workers, "workers", 0, "Number of annotation workers (default from config, number of CPUs)")
	annotateCmd.Flags().IntVar(&chunkSize, "chunk-size", 10000, "Features annotated per batch")

	annotateCmd.MarkFlagRequired("in")
	annotateCmd.MarkFlagRequired("out")
}

// loadConfig reads the config file if given and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.LoadFromPath(configFile)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("adducts") {
		cfg.AdductTable = adductCSV
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("water-loss") {
		cfg.WaterLossMass = waterLossMass
	}
	if flags.Changed("top-n") {
		cfg.Filter.TopN = topN
	}
	if flags.Changed("cutoff") {
		cfg.Filter.IntensityCutoff = cutoffPercent
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
