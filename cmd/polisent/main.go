package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/polisent/internal/config"
	"github.com/TobiSchelling/polisent/internal/database"
	"github.com/TobiSchelling/polisent/internal/pipeline"
	"github.com/TobiSchelling/polisent/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "polisent",
	Short:   "Synthetic political sentiment analysis",
	Long:    "Polisent generates synthetic political sentiment series, aggregates per-country statistics, and composes insight reports relating sentiment to democracy scores.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("polisent", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/polisent/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to adjust countries, generator parameters, and output paths.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		dbStats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Runs:")
		fmt.Printf("  Total: %d\n", dbStats.TotalRuns)
		if dbStats.LatestRun != nil {
			fmt.Printf("  Latest: %s\n", *dbStats.LatestRun)
		}
		fmt.Println("\nData:")
		fmt.Printf("  Observations: %d\n", dbStats.TotalObservations)
		fmt.Printf("  Countries tracked: %d\n", dbStats.CountriesTracked)
		fmt.Printf("  Configured countries: %d\n", len(cfg.Countries))
		return nil
	},
}

// --- run command ---

var (
	dryRun     bool
	runSeed    uint64
	runHorizon int
	runStart   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: generate -> summarize -> report -> store -> export",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		countries, err := cfg.Profiles()
		if err != nil {
			return fmt.Errorf("loading country profiles: %w", err)
		}

		params, err := cfg.Params()
		if err != nil {
			return fmt.Errorf("resolving generator parameters: %w", err)
		}
		if cmd.Flags().Changed("seed") {
			params.Seed = runSeed
		}
		if cmd.Flags().Changed("horizon") {
			params.HorizonDays = runHorizon
		}
		if cmd.Flags().Changed("start") {
			start, err := time.Parse("2006-01-02", runStart)
			if err != nil {
				return fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", runStart)
			}
			params.StartDate = start
		}

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(countries, params)
		} else {
			result = pipe.Run(countries, params)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/5: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("pipeline failed")
		}
		if !dryRun {
			fmt.Printf("\nPipeline complete! Run 'polisent report %s' or 'polisent serve' to view.\n", result.RunID)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "Override random seed")
	runCmd.Flags().IntVar(&runHorizon, "horizon", 0, "Override horizon (days)")
	runCmd.Flags().StringVar(&runStart, "start", "", "Override start date (YYYY-MM-DD)")
}

// --- report command ---

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Print a stored insights report (latest run by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var run *database.Run
		if len(args) == 1 {
			run, err = db.GetRun(args[0])
		} else {
			run, err = db.GetLatestRun()
		}
		if err != nil {
			return err
		}
		if run == nil {
			if len(args) == 1 {
				return fmt.Errorf("run %s not found", args[0])
			}
			return fmt.Errorf("no runs yet; run 'polisent run' first")
		}

		fmt.Println(run.ReportMarkdown)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port > 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "polisent.db")
	return database.Open(dbPath)
}
