package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CerealNotFound/function-calling-server/internal/logging"
	"github.com/CerealNotFound/function-calling-server/relay"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "relay",
	Short:         "LLM function-calling relay",
	Long:          `Relay forwards prompts to a function-calling model and routes the actions it requests to HubSpot, Google Calendar and Google Sheets.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging to stderr")
}

func loadConfig(cmd *cobra.Command) (*relay.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := relay.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.New(logging.Level(verbose))
}

func newRelay(ctx context.Context, cmd *cobra.Command, cfg *relay.Config) (*relay.Relay, error) {
	r, err := relay.New(ctx, cfg, relay.WithLogger(newLogger(cmd)))
	if err != nil {
		return nil, fmt.Errorf("failed to create relay: %w", err)
	}
	return r, nil
}
