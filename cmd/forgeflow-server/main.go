// Package main provides the forgeflow server: the REST API plus the trigger hosts of stored flows.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/forgeflow/forgeflow/pkg/log"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "forgeflow-server",
		Usage:                 "Serve the flow API and run triggers",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL: postgres://... or a directory (file://./data)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Execution event bus (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for trigger_queue nodes; queue triggers are off when empty",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export spans over OTLP/HTTP (OTEL_EXPORTER_OTLP_ENDPOINT)",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.DurationFlag{
				Name:  "http-timeout",
				Usage: "Timeout of HTTP nodes",
				Value: 30 * time.Second,
			},
			&cli.IntFlag{
				Name:  "max-node-executions",
				Usage: "Per-node execution cap guarding against runaway cycles",
				Value: 100,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("server")
			logger.InfoContext(ctx, "Initializing forgeflow server")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := NewServer(ctx, logger, Config{
				DatabaseURL:       command.String("database-url"),
				EventBus:          command.String("event-bus"),
				KafkaBrokers:      command.String("kafka-brokers"),
				RedisAddr:         command.String("redis-addr"),
				Tracing:           command.Bool("tracing"),
				HTTPTimeout:       command.Duration("http-timeout"),
				MaxNodeExecutions: command.Int("max-node-executions"),
				RequestLogging:    true,
			})
			if err != nil {
				return err
			}

			return server.Run(ctx, command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
