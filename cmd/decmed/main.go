package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dukex/decmed/pkg/cmd"
	"github.com/dukex/decmed/pkg/log"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "decmed",
		Usage:                 "Drive a decmed client core from the terminal",
		EnableShellCompletion: true,
		Flags:                 cmd.CoreFlags(),
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return log.WithLogger(ctx, logger), nil
		},
		Commands: []*cli.Command{
			navigateCommand(),
			flowCommand(),
			qrCommand(),
			signoutCommand(),
			resetCommand(),
			watchCommand(),
			eventsCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("decmed failed", "error", err)
		os.Exit(1)
	}
}
