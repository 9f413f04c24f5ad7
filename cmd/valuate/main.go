// valuate runs the DCF valuation pipeline from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
	"dcf_valuation/pkg/core/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "valuate",
	Short: "DCF valuation from financial statements",
	Long: `valuate projects free cash flow to the firm, discounts it at WACC and
reports enterprise, equity and per-share value together with a WACC x growth
sensitivity grid and a capital structure scan.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ratiosCmd)
	rootCmd.AddCommand(historyCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("valuate %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [statements.json]",
	Short: "Value a company",
	Long: `Value a company from a statement set document. Without a file the
valuation runs on the configured assumptions alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assumptionsFile, _ := cmd.Flags().GetString("assumptions")
		noSeed, _ := cmd.Flags().GetBool("no-seed")
		save, _ := cmd.Flags().GetBool("save")
		asJSON, _ := cmd.Flags().GetBool("json")

		var set *statement.Set
		if len(args) == 1 {
			var err error
			set, err = statement.LoadFile(args[0])
			if err != nil {
				return err
			}
		}

		a, err := buildAssumptions(set, !noSeed, assumptionsFile)
		if err != nil {
			return err
		}

		orch := pipeline.NewOrchestrator(nil)
		if save {
			repo, cleanup := openStore(cmd.Context())
			defer cleanup()
			orch.SetRepository(repo)
		}

		res, run, err := orch.Run(cmd.Context(), set, a)
		if err != nil {
			if res == nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "[WARNING] %v\n", err)
		}

		runID := ""
		if run != nil {
			runID = run.ID
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"run_id": runID, "result": res})
		}
		writeReport(cmd.OutOrStdout(), res, runID)
		return nil
	},
}

func init() {
	runCmd.Flags().String("assumptions", "", "assumptions overlay (.yaml or .json)")
	runCmd.Flags().Bool("no-seed", false, "do not derive assumptions from the statements")
	runCmd.Flags().Bool("save", false, "persist the run (database or file store)")
	runCmd.Flags().Bool("json", false, "print the full result as JSON")
}

// --- Ratios Command ---

var ratiosCmd = &cobra.Command{
	Use:   "ratios [statements.json]",
	Short: "Show trailing historical ratios and the seeded assumptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := statement.LoadFile(args[0])
		if err != nil {
			return err
		}
		writeRatios(cmd.OutOrStdout(), set.CompanyName, ratio.Extract(set))

		seeded, err := pipeline.SeedAssumptions(set).ToYAML()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nSeeded assumptions\n%s", seeded)
		return nil
	},
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored valuation runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")

		repo, cleanup := openStore(cmd.Context())
		defer cleanup()

		runs, err := repo.ListRuns(cmd.Context(), company, limit)
		if err != nil {
			return err
		}
		writeHistory(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("company", "", "filter by company name")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs (0 for all)")
}

// buildAssumptions layers, lowest precedence first: built-in defaults (or
// the statement seed), the configured assumptions file, the --assumptions file.
func buildAssumptions(set *statement.Set, seed bool, overlay string) (assumption.Assumptions, error) {
	a := assumption.Defaults()
	if set != nil && seed {
		a = pipeline.SeedAssumptions(set)
	}
	if cfg.Valuation.ProjectionYears > 0 {
		a.ProjectionYears = cfg.Valuation.ProjectionYears
	}

	for _, path := range []string{cfg.Valuation.AssumptionsFile, overlay} {
		if path == "" {
			continue
		}
		var err error
		if a, err = assumption.LoadFileOnto(a, path); err != nil {
			return a, err
		}
	}
	return a, a.Validate()
}

// openStore connects to the configured database, falling back to the file store.
func openStore(ctx context.Context) (*store.RunStore, func()) {
	if cfg.Database.URL != "" {
		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			fmt.Fprintf(os.Stderr, "[WARNING] %v, using file store %s\n", err, cfg.Store.Dir)
		} else {
			return store.NewRunStore(store.GetPool(), ""), store.Close
		}
	}
	return store.NewRunStore(nil, cfg.Store.Dir), func() {}
}
