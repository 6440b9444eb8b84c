package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/pkg/adduct"
	"github.com/ChrisMcGann/LipidKey/pkg/config"
)

var massCmd = &cobra.Command{
	Use:   "mass <mz> <adduct>",
	Short: "Compute the neutral mass of an ion",
	Long: `Compute the monoisotopic neutral mass of an ion observed at m/z under an
adduct hypothesis.

Example:
  lipidkey mass 760.5851 "[M+H]+"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mz, err := parseFloatArg("m/z", args[0])
		if err != nil {
			return err
		}
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}
		mass, ok := table.MassFromMZ(mz, args[1])
		if !ok {
			return fmt.Errorf("%w: %s", adduct.ErrUnknownAdduct, args[1])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", mass)
		return nil
	},
}

var mzCmd = &cobra.Command{
	Use:   "mz <mass> <adduct>",
	Short: "Compute the m/z of a neutral mass",
	Long: `Compute the m/z at which a neutral monoisotopic mass appears under an
adduct.

Example:
  lipidkey mz 759.5778 "[M+Na]+"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mass, err := parseFloatArg("mass", args[0])
		if err != nil {
			return err
		}
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}
		mz, ok := table.MZFromMass(mass, args[1])
		if !ok {
			return fmt.Errorf("%w: %s", adduct.ErrUnknownAdduct, args[1])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", mz)
		return nil
	},
}

var ppmCmd = &cobra.Command{
	Use:   "ppm <experimental> <theoretical|ppm>",
	Short: "Compute PPM error or a PPM tolerance window",
	Long: `Print the mass error of an experimental mass against a theoretical mass
in whole PPM increments. With --window, print the Da width of a PPM tolerance
around a mass instead.

Examples:
  lipidkey ppm 1000.003 1000
  lipidkey ppm --window 500 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mass, err := parseFloatArg("mass", args[0])
		if err != nil {
			return err
		}

		window, err := cmd.Flags().GetBool("window")
		if err != nil {
			return err
		}
		if window {
			ppm, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid ppm '%s': %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", adduct.DeltaFromPPM(mass, ppm))
			return nil
		}

		theoretical, err := parseFloatArg("theoretical mass", args[1])
		if err != nil {
			return err
		}
		ppm, err := adduct.PPMIncrement(mass, theoretical)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", ppm)
		return nil
	},
}

var adductsCmd = &cobra.Command{
	Use:   "adducts",
	Short: "List the adduct table",
	Long:  `Print the adduct table in resolution order, with multimer, charge and offset.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-16s %8s %6s %12s\n", "Adduct", "Multimer", "Charge", "Offset")
		for _, e := range table.Entries() {
			fmt.Fprintf(out, "%-16s %8d %5d%s %12.6f\n",
				e.Name, adduct.ParseMultimer(e.Name), adduct.ParseCharge(e.Name), sign(e.Name), e.Offset)
		}
		return nil
	},
}

func init() {
	ppmCmd.Flags().Bool("window", false, "Print the Da tolerance window of <ppm> around <experimental>")
}

// loadTable returns the adduct table selected by --adducts or the config file
func loadTable(cmd *cobra.Command) (*adduct.Table, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.LoadFromPath(configFile)
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("adducts") {
		cfg.AdductTable = adductCSV
	}
	return cfg.LoadAdductTable()
}

func sign(name string) string {
	d, err := adduct.ParseDescriptor(name)
	if err != nil {
		return "?"
	}
	return d.Sign.String()
}

func parseFloatArg(what, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", what, s, err)
	}
	return v, nil
}
