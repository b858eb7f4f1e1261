// Package main implements the intentguard CLI — administrative tooling for
// the intent ledger plus a reference executor that drives the Hook Pipeline
// Engine end-to-end without an editor host.
//
// # File Index
//
//   - main.go      - entry point, rootCmd, global flags, init()
//   - cmd_intent.go - intent list|show|create|transition
//   - cmd_run.go    - run <tool>, the reference executor + approval prompter
//   - cmd_trace.go  - trace tail
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"intentguard/internal/config"
	"intentguard/internal/logging"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intentguard",
	Short: "intent-driven orchestration middleware for autonomous coding agents",
	Long: `intentguard mediates every mutating tool action an autonomous coding
agent performs against a source workspace: intent lifecycle, filesystem
scope, concurrency, human approval, and an append-only audit ledger.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		debug := verbose
		if cfg, err := config.Load(ws); err == nil && cfg.Logging.DebugMode {
			debug = true
		}
		if err := logging.Initialize(ws, debug); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
}

func resolveWorkspace() (string, error) {
	if workspace == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")

	rootCmd.AddCommand(intentCmd, runCmd, traceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
