package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/internal/audit"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/graphstore"
	"github.com/marketloom/graphgate/internal/oracle"
	"github.com/marketloom/graphgate/internal/outwriter"
	"github.com/marketloom/graphgate/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// Shared dependencies built by sharedSetup.
var (
	store  contract.GraphStore
	engine *core.Engine
	ow     = outwriter.NewOutWriter()
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "graphgate",
	Short:              "Admission control and capacity management for a markets knowledge graph.",
	Long:               `Graphgate guards a macro/markets knowledge graph: it admits topics and articles against capacity ceilings, displaces weaker content through cascading downgrades, and sweeps buckets back under their limits.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".graphgate") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("GRAPHGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("max-topics", contract.DefaultMaxTopics)
	viper.SetDefault("max-cleanup-passes", contract.DefaultMaxCleanupPasses)
	viper.SetDefault("bucket-scan-window", contract.DefaultBucketScanWindow)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("graph-backend", schema.MemoryGraph)
	viper.SetDefault("oracle-backend", schema.RulesOracle)
	viper.SetDefault("oracle-timeout", "20s")
	viper.SetDefault("audit-backend", schema.SQLiteBackend)
	viper.SetDefault("audit-db-connect", "")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation and builds the engine.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do). The first
	// argument is the topic id; ingest may carry file paths after it.
	if len(args) >= 1 {
		input.TopicIDStr = args[0]
	} else {
		input.TopicIDStr = ""
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Initialize the audit layer with validated config
	if err := audit.InitAudit(cfg); err != nil {
		return fmt.Errorf("failed to initialize audit store: %w", err)
	}

	// 6. Build the graph store, oracle and engine
	var err error
	store, err = graphstore.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect graph store: %w", err)
	}

	decider, err := oracle.New(cfg)
	if err != nil {
		return err
	}

	tracker := audit.NewStoreTracker(audit.Manager)
	engine = core.NewEngine(cfg, store, decider, tracker, audit.Manager)

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".graphgate")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// CloseResources releases the graph store connection.
func CloseResources() {
	if store != nil {
		if err := store.Close(rootCtx); err != nil {
			contract.LogWarn("Closing graph store", err)
		}
	}
}
