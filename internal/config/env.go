package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

// DefaultEnvFiles are read from the working directory when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

// mergeEnvFiles adds the keys of the dotenv files to environ. Keys already
// present in environ are never overridden; among the files the later one
// wins. Missing files are skipped.
func mergeEnvFiles(environ map[string]string, files []string) (map[string]string, error) {
	if files == nil {
		files = DefaultEnvFiles
	}

	fromFiles := map[string]string{}
	for _, name := range files {
		if _, err := os.Stat(name); stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(name)
		if err != nil {
			return nil, errors.ConfigError("failed to read env file").
				WithCause(err).
				WithContext("path", name).
				Build()
		}
		for k, v := range values {
			fromFiles[k] = v
		}
	}

	merged := make(map[string]string, len(environ)+len(fromFiles))
	for k, v := range fromFiles {
		merged[k] = v
	}
	for k, v := range environ {
		merged[k] = v
	}
	return merged, nil
}
