package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/decmed/pkg/cmd"
	"github.com/dukex/decmed/pkg/log"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "decmed-api",
		Usage:                 "Serve a decmed client core to its rendering layer",
		EnableShellCompletion: true,
		Flags: append(cmd.CoreFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Usage:   "Re-check the session on the configured schedule",
				Value:   true,
				Sources: cli.EnvVars("SESSION_WATCH"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			opts, err := cmd.OptionsFrom(command)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Initializing decmed API", "client", opts.Client)

			core, err := cmd.NewCore(ctx, opts, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := core.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close core", "error", err)
				}
			}()

			if command.Bool("watch") {
				if err := core.Watcher.Start(); err != nil {
					return err
				}
			}

			return NewAPI(logger, core.WebConfig()).Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("decmed-api failed", "error", err)
		os.Exit(1)
	}
}
