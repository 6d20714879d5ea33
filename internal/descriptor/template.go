package descriptor

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultSource is the source filename used when none is given.
const DefaultSource = "main.cpp"

// MinimumCMakeVersion is the cmake_minimum_required version in the descriptor.
const MinimumCMakeVersion = "3.15"

const descriptorTemplate = `cmake_minimum_required(VERSION {{ .CMakeVersion }})
project({{ .Module }} LANGUAGES CXX)

# C++ standard
set(CMAKE_CXX_STANDARD 17)
set(CMAKE_CXX_STANDARD_REQUIRED ON)

# Use the modern FindPython integration in pybind11
set(PYBIND11_FINDPYTHON ON)

# Explicit interpreter
set(Python3_EXECUTABLE "{{ .Python }}" CACHE FILEPATH "Path to Python executable")

# Locate Python and pybind11
find_package(Python3 COMPONENTS Interpreter Development REQUIRED)
find_package(pybind11 CONFIG REQUIRED)

# Module target
pybind11_add_module({{ .Module }} {{ .Source }})
`

var tpl = template.Must(template.New("CMakeLists.txt").Option("missingkey=error").Parse(descriptorTemplate))

// templateData holds the three substitution points of the descriptor.
type templateData struct {
	CMakeVersion string
	Module       string
	Python       string
	Source       string
}

// Render returns the descriptor content for module built from source with
// the given interpreter path.
func Render(module, python, source string) ([]byte, error) {
	if source == "" {
		source = DefaultSource
	}
	var buf bytes.Buffer
	err := tpl.Execute(&buf, templateData{
		CMakeVersion: MinimumCMakeVersion,
		Module:       module,
		Python:       python,
		Source:       source,
	})
	if err != nil {
		return nil, fmt.Errorf("render descriptor: %w", err)
	}
	return buf.Bytes(), nil
}
