package cmd

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukex/decmed/pkg/models"
)

// CoreFlags are the flags NewCore is configured from.
func CoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "client",
			Usage:   "Client kind (hospital, patient, ministry)",
			Value:   string(models.ClientHospital),
			Sources: cli.EnvVars("CLIENT_KIND"),
		},
		&cli.StringFlag{
			Name:     "bridge-url",
			Usage:    "Base URL of the backend command host",
			Required: true,
			Sources:  cli.EnvVars("BRIDGE_URL"),
		},
		&cli.DurationFlag{
			Name:    "bridge-timeout",
			Usage:   "Timeout of a single backend command",
			Value:   30 * time.Second,
			Sources: cli.EnvVars("BRIDGE_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "session-url",
			Usage:   "Session store URL (file://<dir> or redis://...)",
			Value:   "file://./data",
			Sources: cli.EnvVars("SESSION_URL"),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Usage:   "Lifetime of a stored session in redis, 0 keeps it",
			Value:   0,
			Sources: cli.EnvVars("SESSION_TTL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka brokers",
			Value:   "localhost:9092",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the client YAML configuration",
			Sources: cli.EnvVars("DECMED_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export traces over OTLP/HTTP",
			Sources: cli.EnvVars("TRACING_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

// OptionsFrom reads the CoreFlags of command.
func OptionsFrom(command *cli.Command) (Options, error) {
	client, err := models.ParseClientKind(command.String("client"))
	if err != nil {
		return Options{}, err
	}

	return Options{
		Client:       client,
		BridgeURL:    command.String("bridge-url"),
		Timeout:      command.Duration("bridge-timeout"),
		SessionURL:   command.String("session-url"),
		SessionTTL:   command.Duration("session-ttl"),
		EventBus:     command.String("event-bus"),
		KafkaBrokers: command.String("kafka-brokers"),
		ConfigPath:   command.String("config"),
		Tracing:      command.Bool("tracing"),
	}, nil
}
