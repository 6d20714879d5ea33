package commands

import (
	"context"

	"github.com/alecthomas/kong"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/version"
)

// exitRequest carries an exit code requested by kong (e.g. --version, --help)
// out of the parser.
type exitRequest struct{ code int }

// Execute parses args, runs the selected command and returns the process exit
// code. It never calls os.Exit.
func Execute(ctx context.Context, args []string, g *Global) (code int) {
	var cli CLI
	adapter := dberrors.NewCLIErrorAdapter(false, nil).WithOutput(g.Stderr)

	parser, err := kong.New(&cli,
		kong.Name("buildproj"),
		kong.Description("Prepare a CMakeLists.txt for a pybind11 module and build it with MSVC or MSYS2."),
		kong.Vars{"version": version.String()},
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(code int) { panic(exitRequest{code: code}) }),
		kong.Bind(g),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return adapter.Report(dberrors.WrapError(err, dberrors.CategoryInternal, "build command line parser").Build())
	}

	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = req.code
		}
	}()

	if len(args) == 0 {
		printUsage(parser, g)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		if !dberrors.IsClassified(err) {
			err = dberrors.WrapError(err, dberrors.CategoryValidation, "invalid arguments").Build()
		}
		return adapter.Report(err)
	}

	adapter = dberrors.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(g.Stderr)
	if err := kctx.Run(); err != nil {
		return adapter.Report(err)
	}
	return 0
}

// printUsage writes the help text to stderr.
func printUsage(parser *kong.Kong, g *Global) {
	parser.Stdout = g.Stderr
	kctx, err := kong.Trace(parser, nil)
	if err != nil {
		return
	}
	_ = kctx.PrintUsage(false)
}
