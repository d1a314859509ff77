package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/cmd"
	"github.com/dukex/decmed/pkg/log"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/web"
)

var stdout io.Writer = os.Stdout

var errUsage = errors.New("missing argument")

// withCore runs fn against a core wired from the root flags.
func withCore(ctx context.Context, command *cli.Command, fn func(ctx context.Context, core *cmd.Core) error) error {
	opts, err := cmd.OptionsFrom(command)
	if err != nil {
		return err
	}

	logger := log.FromContext(ctx)

	core, err := cmd.NewCore(ctx, opts, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := core.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close core", "error", err)
		}
	}()

	return fn(ctx, core)
}

func navigateCommand() *cli.Command {
	return &cli.Command{
		Name:      "navigate",
		Aliases:   []string{"n"},
		Usage:     "Resolve a page and print its data",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, command *cli.Command) error {
			target := command.Args().First()
			if target == "" {
				return fmt.Errorf("%w: path", errUsage)
			}

			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				return navigate(ctx, core.Router, target, stdout)
			})
		},
	}
}

func navigate(ctx context.Context, r *router.Router, target string, w io.Writer) error {
	page, err := r.Navigate(ctx, target)
	if err != nil {
		return err
	}

	return printJSON(w, page)
}

func flowCommand() *cli.Command {
	return &cli.Command{
		Name:      "flow",
		Aliases:   []string{"f"},
		Usage:     "Submit one step of a form flow",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "form",
				Usage: "Form values as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "Scope of the flow as a query string, e.g. accessToken=...&patientAddress=...",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			name := command.Args().First()
			if name == "" {
				return fmt.Errorf("%w: flow name", errUsage)
			}

			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				return submitFlow(ctx, core.Flows, core.Toasts, name, command.String("query"), command.String("form"), stdout)
			})
		},
	}
}

func submitFlow(ctx context.Context, flows *web.Flows, toasts *notify.Buffer, name, query, form string, w io.Writer) error {
	scope, err := url.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	flow, err := flows.Get(ctx, name, scope)
	if err != nil {
		return err
	}

	outcome, err := flow.Submit(ctx, func(out any) error {
		return json.NewDecoder(strings.NewReader(form)).Decode(out)
	})
	if err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}

	return printJSON(w, map[string]any{
		"outcome": outcome,
		"state":   flow.State(),
		"toasts":  toasts.Drain(),
	})
}

func qrCommand() *cli.Command {
	return &cli.Command{
		Name:  "qr",
		Usage: "Print the patient's QR code",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				if core.Config.Client != models.ClientPatient {
					return errors.New("only patients have a QR code")
				}

				return showQR(ctx, resources.NewProfile(core.Invoker, core.Env.Notifier, core.Session), stdout)
			})
		},
	}
}

func showQR(ctx context.Context, profile *resources.Profile, w io.Writer) error {
	if _, err := profile.Get(ctx); err != nil {
		return err
	}

	return profile.RenderQR(w)
}

func signoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "End the backend session",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				return resources.NewProfile(core.Invoker, core.Env.Notifier, core.Session).SignOut(ctx)
			})
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Wipe the local account",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				res := auth.Reset(ctx, core.Env, auth.Session{Gate: core.Gate, Context: core.Session})

				return res.Err()
			})
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-check the session on the configured schedule until interrupted",
		ArgsUsage: "[path]",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				path := command.Args().First()
				if path == "" {
					path = session.PathDashboard
				}

				core.Watcher.Watch(path)
				if err := core.Watcher.Start(); err != nil {
					return err
				}

				return untilInterrupted(ctx)
			})
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Log client events from the event bus until interrupted",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withCore(ctx, command, func(ctx context.Context, core *cmd.Core) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := cmd.FollowEvents(ctx, core.Bus, log.FromContext(ctx)); err != nil {
					return err
				}

				<-ctx.Done()

				return nil
			})
		},
	}
}

func untilInterrupted(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
