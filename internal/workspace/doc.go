// Package workspace manages the working directory a build runs in: the
// project root holding CMakeLists.txt and the conventional build/ output
// directory the toolchain regenerates on every run.
//
// Only one orchestration run may target a given root at a time. No file
// locking is performed; concurrent runs against the same directory are
// unsupported.
package workspace
