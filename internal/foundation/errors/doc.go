// Package errors provides the classified error primitives used across buildproj.
//
// Every failure that reaches the CLI is a ClassifiedError carrying a category,
// a severity and optional structured context. The CLIErrorAdapter turns the
// category into a process exit code and a single diagnostic line.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write descriptor").
//		Fatal().
//		WithContext("path", path).
//		Build()
package errors
