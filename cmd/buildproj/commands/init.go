package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	"git.home.luguber.info/inful/buildproj/internal/workspace"
)

// InitCmd implements the 'init' command: it ensures the descriptor exists and
// does not touch build/ or run a toolchain.
type InitCmd struct {
	Stdout bool `name:"stdout" help:"Print the descriptor that would be written instead of writing it."`
}

func (i *InitCmd) Run(ctx context.Context, g *Global) error {
	if err := g.Config.Validate(); err != nil {
		return err
	}
	opts := buildOptions(g.Config)
	if err := descriptor.ValidateModuleName(opts.ModuleName); err != nil {
		return err
	}

	ws := workspace.NewManager(g.Dir)
	writer := descriptor.NewWriter(ws, defaultInterpreter(ctx, g, g.Config))
	params := descriptor.Params{
		Module: opts.ModuleName,
		Python: opts.PythonExecutable,
		Source: opts.CppFile,
	}

	if i.Stdout {
		python := writer.Interpreter(params)
		if python == "" {
			return descriptor.ErrNoInterpreter
		}
		content, err := descriptor.Render(params.Module, python, params.Source)
		if err != nil {
			return err
		}
		_, err = g.Stdout.Write(content)
		return err
	}

	outcome, err := writer.Ensure(ctx, params)
	if err != nil {
		return err
	}
	switch outcome {
	case descriptor.OutcomeSkipped:
		fmt.Fprintf(g.Stdout, "%s already exists, left unchanged\n", ws.DescriptorPath())
	default:
		fmt.Fprintf(g.Stdout, "Wrote %s\n", ws.DescriptorPath())
	}
	return nil
}
