package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/results"
	"github.com/urban-sim/urban-sim/sim/scenario"
	"github.com/urban-sim/urban-sim/sim/trace"
)

var (
	// CLI flags for the run command
	configPath      string // Scenario YAML; defaults apply when empty
	seed            int64  // Seed of the event stream and the synthetic population
	startYear       int    // First simulated year
	endYear         int    // Last simulated year (inclusive)
	logLevel        string // Log verbosity level
	resultsDB       string // SQLite file for run results; empty disables the store
	traceLevel      string // Event trace level: none, events
	telemetry       bool   // Collect OpenTelemetry metrics and spans in-process
	households      int    // Synthetic households
	vacantDwellings int    // Synthetic vacant dwellings
	zones           int    // Synthetic zones
	regions         int    // Synthetic regions
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "urban-sim",
	Short: "Annual event-driven microsimulation of households and the housing market",
}

// runCmd executes the simulation using a scenario file and CLI overrides
var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run the urban simulation",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation(cmd)
	},
}

// runSimulation builds the scenario, attaches the result sinks and executes
// it. The store is closed and the telemetry report printed before an error
// is returned.
func runSimulation(cmd *cobra.Command) error {
	// Set up logging
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	props, err := loadScenario(configPath)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, props)
	if err := props.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	logrus.Infof("Starting simulation: seed=%d, years %d-%d, %d households, %d zones",
		props.Seed, props.StartYear, props.EndYear, props.Synthetic.Households, props.Synthetic.Zones)
	startTime := time.Now()

	run, err := scenario.Load(props)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}
	run.AddSink(results.NewLogSink(logrus.InfoLevel))

	runID := runLabel(props)
	if resultsDB != "" {
		store, err := results.Open(resultsDB, results.RunInfo{
			Seed: props.Seed, StartYear: props.StartYear, EndYear: props.EndYear, Scenario: configPath,
		})
		if err != nil {
			return fmt.Errorf("opening results store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logrus.Warnf("Closing results store: %v", err)
			}
		}()
		run.AddSink(store)
		runID = store.RunID()
		logrus.Infof("Recording run %s to %s", runID, resultsDB)
	}

	if telemetry {
		tel := newTelemetryCollector()
		defer tel.shutdown(context.Background())
		sink, err := results.NewOTelSink(context.Background(), runID)
		if err != nil {
			return fmt.Errorf("creating telemetry sink: %w", err)
		}
		run.AddSink(sink)
		defer func() {
			if err := run.Scheduler.Err(); err != nil {
				sink.RecordAbort(err)
			}
			tel.report()
		}()
	}

	if err := finishRun(run); err != nil {
		return err
	}
	logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// finishRun executes a built run and prints its year summaries and trace.
func finishRun(run *scenario.Run) error {
	if err := run.Execute(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	for _, s := range run.Scheduler.Summaries() {
		s.Print(os.Stdout)
	}
	if run.Trace != nil {
		printTraceSummary(trace.Summarize(run.Trace))
	}
	return nil
}

// applyRunFlags overrides scenario values with flags the user set explicitly.
// Flag defaults never overwrite values from the scenario file.
func applyRunFlags(cmd *cobra.Command, props *sim.Properties) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		props.Seed = seed
	}
	if flags.Changed("start-year") {
		props.StartYear = startYear
	}
	if flags.Changed("end-year") {
		props.EndYear = endYear
	}
	if flags.Changed("trace-level") {
		props.TraceLevel = traceLevel
	}
	if flags.Changed("households") {
		props.Synthetic.Households = households
	}
	if flags.Changed("vacant-dwellings") {
		props.Synthetic.VacantDwellings = vacantDwellings
	}
	if flags.Changed("zones") {
		props.Synthetic.Zones = zones
	}
	if flags.Changed("regions") {
		props.Synthetic.Regions = regions
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags adds the run flags to cmd, with defaults taken from
// sim.DefaultProperties.
func registerRunFlags(cmd *cobra.Command) {
	defaults := sim.DefaultProperties()

	cmd.Flags().StringVar(&configPath, "config", "", "Scenario YAML file (defaults apply when omitted)")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for the event stream and the synthetic population")
	cmd.Flags().IntVar(&startYear, "start-year", defaults.StartYear, "First simulated year")
	cmd.Flags().IntVar(&endYear, "end-year", defaults.EndYear, "Last simulated year (inclusive)")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&resultsDB, "results-db", "", "SQLite file to record run results in")
	cmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Event trace level (none, events)")
	cmd.Flags().BoolVar(&telemetry, "telemetry", false, "Collect OpenTelemetry metrics and year spans and report them at the end")

	// Synthetic population sizes
	cmd.Flags().IntVar(&households, "households", defaults.Synthetic.Households, "Synthetic households")
	cmd.Flags().IntVar(&vacantDwellings, "vacant-dwellings", defaults.Synthetic.VacantDwellings, "Synthetic vacant dwellings")
	cmd.Flags().IntVar(&zones, "zones", defaults.Synthetic.Zones, "Synthetic zones")
	cmd.Flags().IntVar(&regions, "regions", defaults.Synthetic.Regions, "Synthetic regions")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
