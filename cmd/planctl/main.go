// planctl builds, solves, and diagnoses pharmaceutical distribution plans
// from the command line, without running the API server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmaflow/internal/config"
	"pharmaflow/internal/dataset"
	"pharmaflow/internal/domain"
	"pharmaflow/internal/planner"
	"pharmaflow/internal/service"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// generate flags
	genPlants  int
	genCenters int
	genDrugs   int
	genWeeks   int
	genSeed    int64
	genSolve   bool
	outputPath string

	// solve and diagnose flags
	inputPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "PharmaFlow distribution planning CLI",
	Long: `planctl turns plant/center/drug/week tables into distribution plans.

Datasets are CSV files with one row per plant, center, drug, and week
combination. Plans and infeasibility diagnoses are printed as JSON.

Subcommands:
  generate - Write a synthetic dataset as CSV
  solve    - Build and solve the plan for a dataset
  diagnose - Run the infeasibility checks on a dataset`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		if verbose {
			logger, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
		} else {
			logger = zap.NewNop()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// generateCmd writes a synthetic dataset
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic dataset as CSV",
	Long: `Generates a reproducible synthetic dataset and writes it as CSV to
--output, or to stdout when no output file is given. Dimension flags
override the configured generator defaults.

With --solve the generated dataset is planned immediately and the outcome
is printed as JSON; the CSV itself is then only written when --output
names a file.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// solveCmd plans a dataset
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Build and solve the plan for a dataset",
	Long: `Reads the CSV dataset named by --input, builds the distribution model,
solves it, and prints the outcome as JSON. An infeasible dataset is not
an error: the outcome carries the diagnosis instead of a plan.

Pass --input - to read the dataset from stdin.`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

// diagnoseCmd runs the infeasibility checks without solving
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the infeasibility checks on a dataset",
	Long: `Evaluates the capacity, storage, and reachability checks directly on
the dataset named by --input and prints the findings as JSON. Useful for
vetting a dataset before a solve, or for inspecting datasets the solver
still accepts.

Pass --input - to read the dataset from stdin.`,
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Generator flags
	defaults := dataset.DefaultGeneratorConfig()
	generateCmd.Flags().IntVar(&genPlants, "plants", defaults.Plants, "Number of plants")
	generateCmd.Flags().IntVar(&genCenters, "centers", defaults.Centers, "Number of distribution centers")
	generateCmd.Flags().IntVar(&genDrugs, "drugs", defaults.Drugs, "Number of drugs")
	generateCmd.Flags().IntVar(&genWeeks, "weeks", defaults.Weeks, "Number of weeks in the horizon")
	generateCmd.Flags().Int64Var(&genSeed, "seed", defaults.Seed, "Random seed")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV path (default stdout)")
	generateCmd.Flags().BoolVar(&genSolve, "solve", false, "Plan the generated dataset and print the outcome")

	// Dataset input flags
	solveCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Dataset CSV path, or - for stdin")
	_ = solveCmd.MarkFlagRequired("input")
	diagnoseCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Dataset CSV path, or - for stdin")
	_ = diagnoseCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gcfg := cfg.Generator
	if cmd.Flags().Changed("plants") {
		gcfg.Plants = genPlants
	}
	if cmd.Flags().Changed("centers") {
		gcfg.Centers = genCenters
	}
	if cmd.Flags().Changed("drugs") {
		gcfg.Drugs = genDrugs
	}
	if cmd.Flags().Changed("weeks") {
		gcfg.Weeks = genWeeks
	}
	if cmd.Flags().Changed("seed") {
		gcfg.Seed = genSeed
	}
	if err := gcfg.Validate(); err != nil {
		return err
	}

	table := dataset.Generate(gcfg)

	if outputPath != "" || !genSolve {
		out := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := dataset.WriteTable(out, table); err != nil {
			return fmt.Errorf("writing dataset: %w", err)
		}
	}

	logger.Info("dataset generated",
		zap.Int("rows", len(table)),
		zap.Int64("seed", gcfg.Seed))

	if genSolve {
		outcome, err := newPlanningService().Plan(cmd.Context(), table)
		if err != nil {
			return err
		}
		return printJSON(outcome)
	}
	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	table, err := readDataset(inputPath)
	if err != nil {
		return err
	}

	outcome, err := newPlanningService().Plan(cmd.Context(), table)
	if err != nil {
		return err
	}

	return printJSON(outcome)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	table, err := readDataset(inputPath)
	if err != nil {
		return err
	}

	diagnosis, err := planner.Diagnose(table, cfg.Planner.ToPlanner())
	if err != nil {
		return err
	}

	return printJSON(diagnosis)
}

func newPlanningService() *service.PlanningService {
	return service.NewPlanningService(cfg.Planner.ToPlanner(), cfg.Solver.Timeout(), logger)
}

func readDataset(path string) (domain.Table, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening dataset: %w", err)
		}
		defer f.Close()
		in = f
	}

	table, err := dataset.ReadTable(in)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return table, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
