package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/forgeflow/forgeflow/pkg/cmd"
	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/log"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/services"
)

var (
	ErrFlowFileRequired = errors.New("flow file argument is required")
	ErrInvalidVariable  = errors.New("variables must be given as key=value")
	ErrRunFailed        = errors.New("flow run did not succeed")
)

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a flow file and print its trace",
		ArgsUsage: "<flow-file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Seed a variable, key=value (JSON values are decoded)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Cancel the run after this duration (0 waits forever)",
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
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return ErrFlowFileRequired
			}

			logger := log.WithModule("forgeflow")

			flow, err := flowfile.Load(path)
			if err != nil {
				return err
			}

			seeds, err := parseVars(command.StringSlice("var"))
			if err != nil {
				return err
			}

			if flow.Variables == nil {
				flow.Variables = map[string]any{}
			}

			maps.Copy(flow.Variables, seeds)

			reg, err := cmd.NewRegistry(logger, command.Duration("http-timeout"))
			if err != nil {
				return err
			}

			if err := flowfile.NewValidator(nil, reg).Validate(flow); err != nil {
				return err
			}

			if timeout := command.Duration("timeout"); timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			executions := services.NewExecutions(logger, reg,
				services.WithMaxNodeExecutions(command.Int("max-node-executions")),
			)

			record, runErr := executions.Run(ctx, flow, map[string]any{"source": "cli"})
			if record == nil {
				return runErr
			}

			out := writer(command)
			printLogs(out, record.Logs)
			printResults(out, record)

			if record.Status != models.ExecutionStatusSuccess {
				return fmt.Errorf("%w: %s", ErrRunFailed, record.Error)
			}

			return nil
		},
	}
}

// parseVars turns key=value pairs into variables. Values that parse as JSON keep their JSON type.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVariable, pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		vars[strings.TrimSpace(key)] = value
	}

	return vars, nil
}

func printLogs(out io.Writer, logs []models.LogEntry) {
	for _, entry := range logs {
		node := ""
		if entry.NodeID != "" {
			node = "[" + entry.NodeID + "] "
		}

		fmt.Fprintf(out, "%s %-7s %s%s\n", entry.Timestamp.Format(time.TimeOnly), entry.Level, node, entry.Message)
	}
}

func printResults(out io.Writer, record *models.FlowExecution) {
	fmt.Fprintf(out, "\nExecution %s: %s\n", record.ID, record.Status)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tSTATUS\tDURATION\tDETAIL")

	for _, result := range record.Results {
		detail := result.Error
		if detail == "" && result.Output != nil {
			if encoded, err := json.Marshal(result.Output); err == nil {
				detail = truncate(string(encoded), 80)
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", result.NodeID, result.Status, result.Duration().Round(time.Millisecond), detail)
	}

	_ = w.Flush()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit-3] + "..."
}

func writer(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return io.Discard
}
