package commands

import (
	"context"
	"fmt"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(ctx context.Context, g *Global) error {
	p, err := newPipeline(ctx, g)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.run(ctx, "build")
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "Built %s with %s (descriptor %s, run %s)\n",
		p.options.ModuleName, p.options.BuildMethod, res.Descriptor, res.BuildID)
	return nil
}
