package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CerealNotFound/function-calling-server/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /api/function_call and the conversation, catalogue, health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, err := newRelay(ctx, cmd, cfg)
		if err != nil {
			return err
		}

		handler := server.NewHandler(r,
			server.WithMetrics(r.Metrics()),
			server.WithLogger(r.Logger()),
		)
		return server.Run(ctx, cfg.Server.Addr, handler, r.Logger())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
}
