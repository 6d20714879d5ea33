// Package foundation holds small generic helpers shared by buildproj packages:
// an Option type for values that may be absent and a Normalizer for parsing
// free-form strings into closed enums.
package foundation
