// Package config loads buildproj settings. Values are layered, lowest
// precedence first: built-in defaults, the optional YAML file, .env and
// .env.local, the process environment (BUILDPROJ_*), and finally command-line
// flags applied through ApplyOverrides.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

const (
	// DefaultPath is the config file looked up when --config is not given.
	DefaultPath = "buildproj.yaml"
	// EnvPrefix scopes the environment overrides.
	EnvPrefix = "BUILDPROJ_"
)

// Config is the resolved buildproj configuration.
type Config struct {
	BuildMethod      string        `yaml:"build_method" env:"BUILD_METHOD"`
	CppFile          string        `yaml:"cpp_file" env:"CPP_FILE"`
	PythonExecutable string        `yaml:"python_executable" env:"PYTHON_EXECUTABLE"`
	ModuleName       string        `yaml:"module_name" env:"MODULE_NAME"`
	CMake            CMakeConfig   `yaml:"cmake" envPrefix:"CMAKE_"`
	EventsDB         string        `yaml:"events_db" env:"EVENTS_DB"`
	MetricsFile      string        `yaml:"metrics_file" env:"METRICS_FILE"`
	Watch            WatchConfig   `yaml:"watch" envPrefix:"WATCH_"`
	Logging          LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
}

// CMakeConfig holds the settings handed to the CMake builder.
type CMakeConfig struct {
	Binary      string `yaml:"binary" env:"BINARY"`
	BuildConfig string `yaml:"build_config" env:"BUILD_CONFIG"`
	Args        string `yaml:"args" env:"ARGS"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		BuildMethod: "msvc",
		CppFile:     "main.cpp",
		CMake: CMakeConfig{
			Binary:      "cmake",
			BuildConfig: "Release",
		},
		Watch:   WatchConfig{Debounce: 500 * time.Millisecond},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path of the YAML file. Empty means DefaultPath.
	Path string
	// Required makes a missing file an error. It is set when the user named
	// the file explicitly.
	Required bool
	// Environ is the process environment in os.Environ form.
	Environ []string
	// EnvFiles are dotenv files read in order, later files winning. Nil
	// means DefaultEnvFiles.
	EnvFiles []string
}

// Load resolves the configuration from defaults, file and environment.
func Load(opts LoadOptions) (*Config, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}

	environ, err := mergeEnvFiles(env.ToMap(opts.Environ), opts.EnvFiles)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.loadFile(path, opts.Required, environ); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, errors.ConfigError("invalid environment configuration").
			WithCause(err).
			Build()
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool, environ map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return errors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	expanded := os.Expand(string(data), func(key string) string { return environ[key] })

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

// Overrides carries values given on the command line. Empty fields leave the
// loaded value untouched.
type Overrides struct {
	BuildMethod      string
	CppFile          string
	PythonExecutable string
	ModuleName       string
	BuildConfig      string
	CMakeArgs        string
	EventsDB         string
	MetricsFile      string
}

// ApplyOverrides layers command-line values on top of c.
func (c *Config) ApplyOverrides(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.BuildMethod, o.BuildMethod)
	set(&c.CppFile, o.CppFile)
	set(&c.PythonExecutable, o.PythonExecutable)
	set(&c.ModuleName, o.ModuleName)
	set(&c.CMake.BuildConfig, o.BuildConfig)
	set(&c.CMake.Args, o.CMakeArgs)
	set(&c.EventsDB, o.EventsDB)
	set(&c.MetricsFile, o.MetricsFile)
}
