package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/forgeflow/forgeflow/pkg/cmd"
	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/log"
)

var ErrInvalidFlow = errors.New("flow has validation errors")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a flow file against the schema, graph rules and node configs",
		ArgsUsage: "<flow-file>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return ErrFlowFileRequired
			}

			flow, err := flowfile.Load(path)
			if err != nil {
				return err
			}

			reg, err := cmd.NewRegistry(log.WithModule("forgeflow"), 0)
			if err != nil {
				return err
			}

			out := writer(command)
			failed := 0

			issues := flowfile.NewValidator(validator.New(validator.WithRequiredStructEnabled()), reg).Check(flow)
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())

				if !issue.Warning {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d", ErrInvalidFlow, failed)
			}

			fmt.Fprintf(out, "%s: valid (%d nodes, %d edges, %d warnings)\n",
				flow.Name, len(flow.Graph.Nodes), len(flow.Graph.Edges), len(issues))

			return nil
		},
	}
}
