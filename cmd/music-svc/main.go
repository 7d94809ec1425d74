package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const serviceName = "music-svc"

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    serviceName,
		Usage:   "Music streaming backend: accounts, songs, playlists and search",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file; ./configs/config.yaml or ./config.yaml when empty",
				Sources: cli.EnvVars("LS_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createAdminCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}
