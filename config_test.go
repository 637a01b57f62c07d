package tyql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/to/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tql", config.Ext)
	assert.Equal(t, "postgres", config.Dialect)
	assert.Equal(t, "./queries", config.InputDir)
}

func TestValidateConfigRejectsUnknownDialect(t *testing.T) {
	config := &Config{Dialect: "oracle"}
	err := validateConfig(config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestValidateConfigRejectsDatabaseMissingConnection(t *testing.T) {
	config := &Config{Databases: map[string]Database{
		"primary": {Dialect: "postgres"},
	}}
	err := validateConfig(config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	config := &Config{}
	applyDefaults(config)
	assert.Equal(t, "tql", config.Ext)
	assert.Equal(t, "postgres", config.Dialect)
	assert.Equal(t, "./queries", config.InputDir)
	assert.NotNil(t, config.Databases)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TYQL_TEST_DSN", "postgres://example")
	assert.Equal(t, "postgres://example", expandEnvVars("${TYQL_TEST_DSN}"))
	assert.Equal(t, "postgres://example", expandEnvVars("$TYQL_TEST_DSN"))
}

func TestSQLDialect(t *testing.T) {
	config := &Config{Dialect: "mysql"}
	assert.Equal(t, "mysql", string(config.SQLDialect()))
}
