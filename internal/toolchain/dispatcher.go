package toolchain

import (
	"context"
	"fmt"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/observability"
)

// Dispatcher is the fixed two-entry registry of builders.
type Dispatcher struct {
	msvc  Builder
	msys2 Builder
}

// NewDispatcher returns a Dispatcher using msvc and msys2 for the
// respective toolchains.
func NewDispatcher(msvc, msys2 Builder) *Dispatcher {
	return &Dispatcher{msvc: msvc, msys2: msys2}
}

// Resolve returns the Builder registered for t.
func (d *Dispatcher) Resolve(t Toolchain) (Builder, error) {
	var b Builder
	switch t {
	case MSVC:
		b = d.msvc
	case MSYS2:
		b = d.msys2
	default:
		return nil, ArgumentError(string(t))
	}
	if b == nil {
		return nil, dberrors.InternalError(fmt.Sprintf("no builder registered for %s", t)).Build()
	}
	return b, nil
}

// Dispatch validates t, then invokes its builder with module and waits for
// it to finish. An unknown toolchain fails before anything is executed.
func (d *Dispatcher) Dispatch(ctx context.Context, t Toolchain, module string) (Result, error) {
	b, err := d.Resolve(t)
	if err != nil {
		return Result{}, err
	}

	observability.InfoContext(ctx, "Dispatching build")
	return b.Invoke(ctx, module)
}
