package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/internal/service"
	"github.com/listen-stream/music-svc/pkg/config"
	"github.com/listen-stream/music-svc/pkg/crypto"
)

// createAdminCommand seeds an administrator; the HTTP API never grants the flag.
func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Display name", Value: "admin"},
			&cli.StringFlag{Name: "email", Usage: "Sign-in email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Initial password", Required: true, Sources: cli.EnvVars("LS_ADMIN_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.LoadInfrastructure(cmd.String("config"))
			if err != nil {
				return err
			}
			log := newLogger(&cfg.Infrastructure.Log)

			pool, err := repository.NewPool(ctx, &cfg.Infrastructure.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()

			users := service.NewUserService(repository.NewUserRepository(pool), crypto.NewPasswordHasher(), log)
			user, err := users.CreateAdmin(ctx, service.RegisterInput{
				Name:     cmd.String("name"),
				Email:    cmd.String("email"),
				Password: cmd.String("password"),
			})
			if err != nil {
				return err
			}

			fmt.Printf("created administrator %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}
