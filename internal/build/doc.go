// Package build runs the buildproj pipeline: reset the workspace build
// directory, ensure the CMake descriptor and dispatch to the selected
// toolchain. Every command path (build, watch) goes through Service.
//
// Stages run sequentially on the calling goroutine and a failing stage aborts
// the ones after it without rolling anything back. The workspace is not
// locked; running two builds against the same directory at the same time is
// unsupported.
package build
