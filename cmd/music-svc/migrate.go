package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/pkg/config"
	"github.com/listen-stream/music-svc/pkg/db"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(m *db.Migrator) error {
						if err := m.Up(); err != nil {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(m *db.Migrator) error {
						if err := m.Down(); err != nil {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, printVersion)
				},
			},
			{
				Name:      "force",
				Usage:     "Set the schema version without running migrations (clears the dirty flag)",
				ArgsUsage: "VERSION",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					version, err := strconv.Atoi(cmd.Args().First())
					if err != nil {
						return fmt.Errorf("force requires a numeric version: %w", err)
					}
					return withMigrator(ctx, cmd, func(m *db.Migrator) error {
						return m.Force(version)
					})
				},
			},
		},
	}
}

func withMigrator(ctx context.Context, cmd *cli.Command, fn func(*db.Migrator) error) error {
	cfg, err := config.LoadInfrastructure(cmd.String("config"))
	if err != nil {
		return err
	}

	conn, err := db.Open(ctx, &cfg.Infrastructure.Postgres)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrator, err := db.NewMigrator(conn, repository.Migrations, repository.MigrationsPath, newLogger(&cfg.Infrastructure.Log))
	if err != nil {
		return err
	}
	defer migrator.Close()

	return fn(migrator)
}

func printVersion(m *db.Migrator) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	fmt.Println("schema", status)
	return nil
}
