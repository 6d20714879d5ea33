package commands

import (
	"context"

	"git.home.luguber.info/inful/buildproj/internal/build"
	"git.home.luguber.info/inful/buildproj/internal/config"
	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	"git.home.luguber.info/inful/buildproj/internal/eventstore"
	"git.home.luguber.info/inful/buildproj/internal/foundation"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/metrics"
	"git.home.luguber.info/inful/buildproj/internal/observability"
	"git.home.luguber.info/inful/buildproj/internal/toolchain"
	"git.home.luguber.info/inful/buildproj/internal/workspace"
)

// pipeline is the wired build service plus the optional journal and metrics
// sinks owned by a command.
type pipeline struct {
	service     *build.DefaultService
	options     build.BuildOptions
	store       *eventstore.SQLiteStore
	recorder    *metrics.PrometheusRecorder
	metricsFile string
}

// newPipeline validates the configuration and wires every component. The
// default interpreter is resolved here, once, and only when no explicit one
// was configured.
func newPipeline(ctx context.Context, g *Global) (*pipeline, error) {
	cfg := g.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extra, err := toolchain.ParseExtraArgs(cfg.CMake.Args)
	if err != nil {
		return nil, err
	}
	dispatcher, err := toolchain.NewDefaultDispatcher(toolchain.CMakeOptions{
		CMake:       cfg.CMake.Binary,
		Dir:         g.Dir,
		BuildDir:    workspace.BuildDirName,
		BuildConfig: cfg.CMake.BuildConfig,
		ExtraArgs:   extra,
		Runner:      g.runner(),
	})
	if err != nil {
		return nil, err
	}

	ws := workspace.NewManager(g.Dir)
	p := &pipeline{
		options:     buildOptions(cfg),
		metricsFile: g.path(cfg.MetricsFile),
	}
	p.service = build.NewService(ws, descriptor.NewWriter(ws, defaultInterpreter(ctx, g, cfg)), dispatcher)

	if cfg.MetricsFile != "" {
		p.recorder = metrics.NewPrometheusRecorder(nil)
		p.service.WithRecorder(p.recorder)
	}
	if cfg.EventsDB != "" {
		store, err := eventstore.NewSQLiteStore(g.path(cfg.EventsDB))
		if err != nil {
			return nil, err
		}
		p.store = store
		p.service.WithJournal(store)
	}
	return p, nil
}

func buildOptions(cfg *config.Config) build.BuildOptions {
	return build.BuildOptions{
		BuildMethod:      cfg.Toolchain(),
		CppFile:          cfg.CppFile,
		PythonExecutable: foundation.NonEmpty(cfg.PythonExecutable),
		ModuleName:       cfg.ModuleName,
	}
}

// defaultInterpreter returns "" when an explicit interpreter is configured or
// none can be found; the descriptor writer reports the latter only if it
// actually needs one.
func defaultInterpreter(ctx context.Context, g *Global, cfg *config.Config) string {
	if cfg.PythonExecutable != "" || g.LookPath == nil {
		return ""
	}
	python, err := descriptor.ResolveInterpreter(g.LookPath, descriptor.DefaultInterpreterCandidates...)
	if err != nil {
		observability.DebugContext(ctx, "No default Python interpreter found", logfields.Error(err))
		return ""
	}
	observability.DebugContext(ctx, "Resolved default Python interpreter", logfields.Python(python))
	return python
}

// run executes one build and flushes metrics afterwards.
func (p *pipeline) run(ctx context.Context, trigger string) (*build.Result, error) {
	res, err := p.service.Run(ctx, build.Request{Options: p.options, Trigger: trigger})
	if p.recorder != nil {
		if werr := p.recorder.WriteTextfile(p.metricsFile); werr != nil {
			observability.WarnContext(ctx, "Failed to write metrics file", logfields.Path(p.metricsFile), logfields.Error(werr))
		}
	}
	return res, err
}

// Close releases the journal.
func (p *pipeline) Close() {
	if p.store != nil {
		_ = p.store.Close()
	}
}
