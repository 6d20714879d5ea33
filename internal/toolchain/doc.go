// Package toolchain selects and invokes the native toolchain that compiles a
// pybind11 module.
//
// There are exactly two toolchains, MSVC and MSYS2. Identifiers coming from
// the command line or configuration are parsed with Parse; anything else is
// rejected before any filesystem or process side effect. The Dispatcher maps
// a Toolchain to its Builder with an exhaustive switch and invokes it
// synchronously.
package toolchain
