package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"studiosite/internal/auth"
	"studiosite/internal/database"
	"studiosite/internal/fallback"
	"studiosite/internal/store"
)

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	return database.Status(db)
}

func seed(ctx context.Context, _ *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	data, err := fallback.Default()
	if err != nil {
		return err
	}
	return store.Seed(ctx, store.New(db), data)
}

func hashPassword(_ context.Context, cmd *cli.Command) error {
	password := cmd.Args().First()
	if password == "" {
		return errors.New("usage: studiosite hash-password <password>")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func totpSetup(_ context.Context, cmd *cli.Command) error {
	key, png, err := auth.GenerateTOTP(cmd.String("account"))
	if err != nil {
		return err
	}

	fmt.Printf("TOTP_SECRET=%s\n", key.Secret())
	fmt.Printf("provisioning URL: %s\n", key.URL())

	if path := cmd.String("qr"); path != "" {
		if err := os.WriteFile(path, png, 0o600); err != nil {
			return fmt.Errorf("write qr code: %w", err)
		}
		fmt.Printf("QR code written to %s\n", path)
	}
	return nil
}
