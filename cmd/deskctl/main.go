// Package main is the operator CLI for the civic desk API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/cmd/deskctl/commands"
	"github.com/noah-isme/civic-desk-api/internal/repository"
	"github.com/noah-isme/civic-desk-api/internal/service"
	"github.com/noah-isme/civic-desk-api/pkg/config"
	"github.com/noah-isme/civic-desk-api/pkg/database"
	"github.com/noah-isme/civic-desk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// operators read command output, not info logs
	cfg.Log.Level = "warn"

	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	rootCmd := &cobra.Command{
		Use:           "deskctl",
		Short:         "Civic desk administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(commands.MigrateCommands(cfg.Database.URL, migrator{logger: logr}))
	rootCmd.AddCommand(commands.UserCommands(func() (commands.UserStore, commands.RoleSetter, func(), error) {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		users := repository.NewUserRepository(db)
		return users, service.NewUserService(users, nil, nil, logr), func() { _ = db.Close() }, nil
	}))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type migrator struct {
	logger *zap.Logger
}

func (m migrator) Up(databaseURL string) error {
	return database.MigrateUp(databaseURL, m.logger)
}

func (m migrator) Down(databaseURL string, steps int) error {
	return database.MigrateDown(databaseURL, steps, m.logger)
}
