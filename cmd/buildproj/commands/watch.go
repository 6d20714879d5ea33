package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/observability"
	"git.home.luguber.info/inful/buildproj/internal/watch"
	"git.home.luguber.info/inful/buildproj/internal/workspace"
)

// WatchCmd implements the 'watch' command: build once, then rebuild whenever
// the source file or CMakeLists.txt changes, until interrupted.
type WatchCmd struct {
	Debounce time.Duration `name:"debounce" help:"Quiet period before a rebuild (default from config, 500ms)."`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global) error {
	p, err := newPipeline(ctx, g)
	if err != nil {
		return err
	}
	defer p.Close()

	// Options are validated up front so a bad module name fails the command
	// instead of every rebuild.
	if err := descriptor.ValidateModuleName(p.options.ModuleName); err != nil {
		return err
	}

	debounce := g.Config.Watch.Debounce
	if w.Debounce > 0 {
		debounce = w.Debounce
	}
	source := p.options.CppFile
	if source == "" {
		source = descriptor.DefaultSource
	}

	watcher, err := watch.New(g.Dir, []string{source, workspace.DescriptorName}, debounce)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	adapter := dberrors.NewCLIErrorAdapter(false, g.Logger).WithOutput(g.Stderr)
	rebuild := func(ctx context.Context) error {
		res, err := p.run(ctx, "watch")
		if err != nil {
			fmt.Fprintln(g.Stderr, adapter.FormatError(err))
			return err
		}
		fmt.Fprintf(g.Stdout, "Built %s with %s (run %s)\n", p.options.ModuleName, p.options.BuildMethod, res.BuildID)
		return nil
	}

	_ = rebuild(ctx)
	watcher.Drain()

	observability.InfoContext(ctx, "Watching for changes")
	fmt.Fprintf(g.Stdout, "Watching %s and %s; press Ctrl+C to stop\n", source, workspace.DescriptorName)
	return watcher.Run(ctx, rebuild)
}
