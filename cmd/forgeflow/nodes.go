package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/forgeflow/forgeflow/pkg/cmd"
	"github.com/forgeflow/forgeflow/pkg/log"
)

func NewNodesCommand() *cli.Command {
	return &cli.Command{
		Name:    "nodes",
		Aliases: []string{"ls"},
		Usage:   "List the node catalog",
		Action: func(_ context.Context, command *cli.Command) error {
			reg, err := cmd.NewRegistry(log.WithModule("forgeflow"), 0)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(writer(command), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tCATEGORY\tBUILT-IN\tDESCRIPTION")

			for _, d := range reg.Descriptors() {
				builtin := "no"
				if d.Registered {
					builtin = "yes"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Type, d.Category, builtin, d.Description)
			}

			return w.Flush()
		},
	}
}
