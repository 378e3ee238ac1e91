package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError carries every issue found by Validate.
type ValidationError struct {
	Path   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		parts = append(parts, iss.String())
	}
	return fmt.Sprintf("invalid config file '%s': %s", e.Path, strings.Join(parts, "; "))
}

// Load reads the YAML config at filePath, validates its tree and decodes it.
// It returns a *ValidationError when required fields are missing.
func Load(filePath string) (*Config, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	}
	return Parse(bytes, filePath)
}

// Parse validates and decodes raw config bytes. filePath is used for error
// messages and to resolve relative paths.
func Parse(data []byte, filePath string) (*Config, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}

	if issues := Validate(tree); len(issues) > 0 {
		return nil, &ValidationError{Path: filePath, Issues: issues}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file '%s': %w", filePath, err)
	}
	// data_source: 1.0 validates as "1" but decodes verbatim.
	cfg.DataSource, _ = scalar(tree, "data_source")
	cfg.trimSpace()
	if cfg.Mirrors.SQLServer.Schema == "" {
		cfg.Mirrors.SQLServer.Schema = "dbo"
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path '%s': %w", filePath, err)
	}
	cfg.Dir = filepath.Dir(abs)

	return &cfg, nil
}

// IsValidationError reports whether err came from config validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
