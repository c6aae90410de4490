package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// WithEnvFile loads REPCHECK_ variables from a dotenv file before the config
// file is read. A missing file is ignored and variables already set in the
// environment are left alone. It must precede WithViperConfig.
func WithEnvFile(path string) Option {
	return func(_ *Config) error {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return errReadEnvFile.Fmt(path).Wrap(err)
	}
}
