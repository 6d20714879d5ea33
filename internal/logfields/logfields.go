package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyModule     = "module"
	KeyToolchain  = "toolchain"
	KeySource     = "source"
	KeyPython     = "python"
	KeyPath       = "path"
	KeyPhase      = "phase"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Module(m string) slog.Attr       { return slog.String(KeyModule, m) }
func Toolchain(t string) slog.Attr    { return slog.String(KeyToolchain, t) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Python(p string) slog.Attr       { return slog.String(KeyPython, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func ExitCode(c int) slog.Attr        { return slog.Int(KeyExitCode, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
