// Package main is the entry point for the studio site API server and its
// maintenance commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"studiosite/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:   "studiosite",
		Usage:  "Design studio site API: portfolio, services, blog, testimonials and contact",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "Load the bundled sample content into empty collections",
				Action: seed,
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
				ArgsUsage: "<password>",
				Action:    hashPassword,
			},
			{
				Name:  "totp-setup",
				Usage: "Generate a TOTP secret for TOTP_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "account",
						Usage: "Account name shown in the authenticator app",
						Value: "admin",
					},
					&cli.StringFlag{
						Name:  "qr",
						Usage: "Write the provisioning QR code PNG to this file",
					},
				},
				Action: totpSetup,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the process logger:
// text in development, JSON otherwise.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return cfg, nil
}
