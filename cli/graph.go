package cli

import (
	"fmt"

	"github.com/kilnworks/kiln/internal/engine"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/graph"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/urfave/cli/v2"
)

const (
	GraphCommandName = "graph"

	orderFlagName = "order"
)

// NewGraphCommand returns the command printing the tasks a target runs, as a DOT graph or in order.
func NewGraphCommand(opts *options.Options) *cli.Command {
	return &cli.Command{
		Name:      GraphCommandName,
		Usage:     "Print the dependency graph of a target in DOT format.",
		UsageText: "kiln graph [--order] [target]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  orderFlagName,
				Usage: "Print the resolved execution order, one task per line.",
			},
		},
		Action: errors.WithPanicHandling(func(c *cli.Context) error {
			b, err := loadBuild(opts)
			if err != nil {
				return err
			}

			eng := engine.New(b.registry, engine.WithLogger(opts.Logger), engine.WithExclusive(opts.Exclusive))

			tasks, err := eng.Resolve(b.target(opts, c.Args().Slice()))
			if err != nil {
				return err
			}

			if !c.Bool(orderFlagName) {
				return graph.WriteDot(opts.Writer, tasks)
			}

			for _, name := range graph.Names(tasks) {
				if _, err := fmt.Fprintln(opts.Writer, name); err != nil {
					return errors.New(err)
				}
			}

			return nil
		}),
	}
}
