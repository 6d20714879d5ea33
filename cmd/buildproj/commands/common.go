package commands

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildproj/internal/config"
	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	"git.home.luguber.info/inful/buildproj/internal/toolchain"
)

// Global is shared state bound into every command.
type Global struct {
	Logger *slog.Logger
	Config *config.Config

	// Dir is the workspace root; build/ and CMakeLists.txt live here.
	Dir     string
	Environ []string
	Stdout  io.Writer
	Stderr  io.Writer

	// Runner executes cmake. Nil means os/exec streaming to Stderr.
	Runner toolchain.CommandRunner
	// LookPath finds the default interpreter.
	LookPath descriptor.LookPathFunc
}

// NewGlobal returns a Global bound to the real process.
func NewGlobal() *Global {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &Global{
		Dir:      dir,
		Environ:  os.Environ(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
	}
}

func (g *Global) runner() toolchain.CommandRunner {
	if g.Runner != nil {
		return g.Runner
	}
	return toolchain.ExecRunner{Output: g.Stderr}
}

// path resolves p against the workspace root.
func (g *Global) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.Dir, p)
}

// CLI definition & global flags. Options left empty fall back to the
// environment, the config file and the built-in defaults.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default buildproj.yaml, optional)."`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	BuildMethod      string `short:"b" name:"build-method" placeholder:"msvc|msys2" help:"Toolchain to build with: msvc or msys2 (default msvc)."`
	CppFile          string `name:"cpp-file" help:"C++ source compiled into the module (default main.cpp)."`
	PythonExecutable string `name:"python-executable" help:"Python interpreter written into CMakeLists.txt (default: python3 or python on PATH)."`
	ModuleName       string `name:"module-name" help:"Name of the extension module and CMake target."`
	BuildConfig      string `name:"build-config" help:"Configuration passed to cmake --build --config (default Release)."`
	CMakeArgs        string `name:"cmake-args" help:"Extra shell-quoted arguments for the cmake configure step."`
	EventsDB         string `name:"events-db" help:"SQLite run journal path; disabled when empty."`
	MetricsFile      string `name:"metrics-file" help:"Prometheus textfile written after each run; disabled when empty."`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Reset build/, ensure CMakeLists.txt and run the toolchain (default)."`
	Init    InitCmd    `cmd:"" help:"Write CMakeLists.txt if it does not exist, without building."`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever the source file or CMakeLists.txt changes."`
	History HistoryCmd `cmd:"" help:"Show recorded runs from the run journal."`
}

// AfterApply runs after flag parsing: it resolves the configuration and
// installs the logger once.
func (c *CLI) AfterApply(g *Global) error {
	cfg, err := config.Load(config.LoadOptions{
		Path:     g.path(c.configPath()),
		Required: c.Config != "",
		Environ:  g.Environ,
		EnvFiles: []string{g.path(".env"), g.path(".env.local")},
	})
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(config.Overrides{
		BuildMethod:      c.BuildMethod,
		CppFile:          c.CppFile,
		PythonExecutable: c.PythonExecutable,
		ModuleName:       c.ModuleName,
		BuildConfig:      c.BuildConfig,
		CMakeArgs:        c.CMakeArgs,
		EventsDB:         c.EventsDB,
		MetricsFile:      c.MetricsFile,
	})
	g.Config = cfg

	opts := &slog.HandlerOptions{Level: logLevel(cfg, c.Verbose, g.Environ)}
	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(g.Stderr, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)
	return nil
}

func (c *CLI) configPath() string {
	if c.Config == "" {
		return config.DefaultPath
	}
	return c.Config
}

// logLevel honours --verbose unless BUILDPROJ_LOG_LEVEL is set explicitly.
func logLevel(cfg *config.Config, verbose bool, environ []string) slog.Level {
	if verbose && !hasEnv(environ, config.EnvPrefix+"LOG_LEVEL") {
		return slog.LevelDebug
	}
	return cfg.Logging.Level.SlogLevel()
}

func hasEnv(environ []string, key string) bool {
	for _, kv := range environ {
		if strings.HasPrefix(kv, key+"=") {
			return true
		}
	}
	return false
}
