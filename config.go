// Package tyql is the compiler's root package: a Config loader plus the
// SQLDialect bridge from a loaded Config to sqlcompiler.Dialect.
package tyql

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/snapql/tyql/sqlcompiler"
)

// ErrConfigValidation is returned when configuration validation fails.
var ErrConfigValidation = errors.New("configuration validation failed")

// Config holds the settings a caller needs to construct a schema.Compiler
// and, optionally, a catalog.Catalog: the schema file extension import
// resolution uses, the default SQL dialect, and named database connections
// a root config file may hand to the catalog for unbound-table resolution.
//
// Scoped down from the teacher's Config to this compiler's actual domain:
// no generation, validation-rule, or system-field sections, since nothing
// here generates code or executes queries.
type Config struct {
	Ext       string              `yaml:"ext"`
	Dialect   string              `yaml:"dialect"`
	InputDir  string              `yaml:"input_dir"`
	Databases map[string]Database `yaml:"databases"`
}

// Database names one catalog connection by dialect and DSN, grounded on the
// teacher's Database struct minus the Driver field (this compiler derives
// the driver from Dialect rather than letting it vary independently).
type Database struct {
	Dialect    string `yaml:"dialect"`
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`
}

// LoadConfig loads configuration from configPath, following the teacher's
// load order: .env files first, then YAML (falling back to defaults when
// configPath doesn't exist), then validation, defaulting, and environment
// variable expansion.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := defaultConfig()
		expandConfigEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

var validDialects = map[string]bool{
	"postgres": true,
	"mysql":    true,
	"mariadb":  true,
	"sqlite":   true,
}

func validateConfig(config *Config) error {
	if config.Dialect != "" && !validDialects[config.Dialect] {
		return fmt.Errorf("%w: invalid dialect %q: must be one of postgres, mysql, mariadb, sqlite", ErrConfigValidation, config.Dialect)
	}

	for name, db := range config.Databases {
		if db.Dialect != "" && !validDialects[db.Dialect] {
			return fmt.Errorf("%w: databases.%s: invalid dialect %q", ErrConfigValidation, name, db.Dialect)
		}
		if db.Connection == "" {
			return fmt.Errorf("%w: databases.%s: connection is required", ErrConfigValidation, name)
		}
	}

	return nil
}

func defaultConfig() *Config {
	return &Config{
		Ext:       "tql",
		Dialect:   "postgres",
		InputDir:  "./queries",
		Databases: make(map[string]Database),
	}
}

func applyDefaults(config *Config) {
	if config.Ext == "" {
		config.Ext = "tql"
	}
	if config.Dialect == "" {
		config.Dialect = "postgres"
	}
	if config.InputDir == "" {
		config.InputDir = "./queries"
	}
	if config.Databases == nil {
		config.Databases = make(map[string]Database)
	}
}

// SQLDialect returns the sqlcompiler.Dialect matching config.Dialect.
func (c *Config) SQLDialect() sqlcompiler.Dialect {
	return sqlcompiler.Dialect(c.Dialect)
}

func loadEnvFiles() error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

var (
	envBraceRE = regexp.MustCompile(`\$\{([^}]+)\}`)
	envWordRE  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references in s against the
// process environment.
func expandEnvVars(s string) string {
	s = envBraceRE.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	s = envWordRE.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
	return s
}

func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		db.Schema = expandEnvVars(db.Schema)
		config.Databases[name] = db
	}
	config.InputDir = expandEnvVars(config.InputDir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
