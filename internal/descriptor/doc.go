// Package descriptor renders and persists the CMakeLists.txt project
// descriptor for a single pybind11 module.
//
// The descriptor is written at most once per workspace: if a file with the
// descriptor name already exists it is left untouched, whatever its content.
// Writes go through a temporary file and a rename so an interrupted write
// never leaves a partial descriptor that a later run would silently reuse.
package descriptor
