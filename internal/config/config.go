package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tuanvumaihuynh/inventory-etl/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/validator"
)

// DotEnvFile is loaded before the environment is parsed when present.
// Variables already set in the environment win.
var DotEnvFile = ".env"

// New reads configuration from environment variables (optionally loading a .env file first)
// and unmarshals them into a struct of type T, then validates it. Any failure is reported as
// apperr.ConfigurationErr.
func New[T any]() (T, error) {
	var cfg T

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, apperr.ConfigurationErr.WrapParent(fmt.Errorf("load %s: %w", DotEnvFile, err))
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, apperr.ConfigurationErr.WrapParent(fmt.Errorf("parse env: %w", err))
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return cfg, fmt.Errorf("create validator: %w", err)
	}

	if err := v.Validate(cfg); err != nil {
		return cfg, apperr.ConfigurationErr.WrapParent(fmt.Errorf("validate: %s", validator.Describe(err)))
	}

	return cfg, nil
}
