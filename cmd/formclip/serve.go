package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	servePort string
	serveHost string
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host (overrides HOST)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(context.WithoutCancel(ctx), cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}
