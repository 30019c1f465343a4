package main

import (
	"github.com/spf13/cobra"

	"github.com/CerealNotFound/function-calling-server/mcpserver"
	"github.com/CerealNotFound/function-calling-server/relay"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the action catalogue over MCP stdio",
	Long:  `Exposes every catalogue action as an MCP tool. Calls are validated and performed directly, without the model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := newLogger(cmd)
		exec, err := relay.NewExecutor(cfg, relay.WithLogger(logger))
		if err != nil {
			return err
		}

		s, err := mcpserver.New(version, exec.Registry().List(), exec)
		if err != nil {
			return err
		}
		logger.Info("mcp server ready", "tools", len(s.Tools()))
		return s.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
