package config

import (
	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	"git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/toolchain"
)

// Validate checks the settings every command depends on. Module name
// requirements are enforced by the commands that need one.
func (c *Config) Validate() error {
	if _, err := toolchain.Parse(c.BuildMethod); err != nil {
		return err
	}
	if c.CppFile == "" {
		return errors.ValidationError("cpp file must not be empty").Build()
	}
	if err := descriptor.ValidateSource(c.CppFile); err != nil {
		return err
	}
	if c.CMake.Binary == "" {
		return errors.ValidationError("cmake binary must not be empty").Build()
	}
	if c.CMake.BuildConfig == "" {
		return errors.ValidationError("cmake build config must not be empty").Build()
	}
	if _, err := toolchain.ParseExtraArgs(c.CMake.Args); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return errors.ValidationError("watch debounce must not be negative").
			WithContext("debounce", c.Watch.Debounce.String()).
			Build()
	}
	return nil
}

// Toolchain returns the parsed build method. Call Validate first.
func (c *Config) Toolchain() toolchain.Toolchain {
	t, _ := toolchain.Parse(c.BuildMethod)
	return t
}
