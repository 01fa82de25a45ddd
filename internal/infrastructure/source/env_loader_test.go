package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/property"
)

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single", input: "PORT", expected: "port"},
		{name: "nested", input: "SERVER_SSL_ENABLED", expected: "server.ssl.enabled"},
		{name: "trailing index", input: "HOSTS__0__", expected: "hosts[0]"},
		{name: "index then name", input: "USERS__1___NAME", expected: "users[1].name"},
		{name: "matrix", input: "M__0____2__", expected: "m[0][2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvKey(tt.input))
		})
	}
}

func TestEnvLoader_Load(t *testing.T) {
	environ := func() []string {
		return []string{
			"HOME=/root",
			"PCFG_SERVER_PORT=9090",
			"PCFG_HOSTS__1__=b",
			"PCFG_HOSTS__0__=a",
			"PCFG_BASE_DIR=/srv",
			"PCFG_=ignored",
		}
	}
	loader := NewEnvLoader(WithEnviron(environ), WithExcluded("PCFG_BASE_DIR"))

	sources, err := loader.Load(context.Background(), ports.SourceRequest{})
	require.NoError(t, err)
	assert.Empty(t, sources, "environment is opt-in")

	sources, err = loader.Load(context.Background(), ports.SourceRequest{IncludeEnv: true})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "env", sources[0].Name)
	assert.Equal(t, []property.Entry{
		{Key: "hosts[0]", Value: property.String("a")},
		{Key: "hosts[1]", Value: property.String("b")},
		{Key: "server.port", Value: property.String("9090")},
	}, sources[0].Properties.Entries())
}

func TestEnvLoader_CustomPrefix(t *testing.T) {
	loader := NewEnvLoader(WithPrefix("APP_"), WithEnviron(func() []string {
		return []string{"APP_NAME=x", "PCFG_NAME=y"}
	}))

	m := loader.LoadEnv()
	assert.Equal(t, []string{"name"}, m.Keys())
	assert.Equal(t, "x", m.GetString("name", ""))
}

func TestOverrideLoader(t *testing.T) {
	sources, err := NewOverrideLoader().Load(context.Background(), ports.SourceRequest{})
	require.NoError(t, err)
	assert.Empty(t, sources)

	sources, err = NewOverrideLoader().Load(context.Background(), ports.SourceRequest{
		Overrides: []string{"a=1", "b=x=y", "a=2"},
	})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, []property.Entry{
		{Key: "a", Value: property.Number{Float: 2, Literal: "2"}},
		{Key: "b", Value: property.String("x=y")},
	}, sources[0].Properties.Entries())

	_, err = NewOverrideLoader().Load(context.Background(), ports.SourceRequest{Overrides: []string{"novalue"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected property.Value
	}{
		{name: "true", input: "true", expected: property.Bool(true)},
		{name: "false", input: "false", expected: property.Bool(false)},
		{name: "null", input: "null", expected: property.Null{}},
		{name: "integer", input: "42", expected: property.Number{Float: 42, Literal: "42"}},
		{name: "negative fraction", input: "-0.5", expected: property.Number{Float: -0.5, Literal: "-0.5"}},
		{name: "exponent", input: "1e3", expected: property.Number{Float: 1000, Literal: "1e3"}},
		{name: "leading zero", input: "007", expected: property.String("007")},
		{name: "hex stays text", input: "0x10", expected: property.String("0x10")},
		{name: "word", input: "Inf", expected: property.String("Inf")},
		{name: "empty", input: "", expected: property.String("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferValue(tt.input))
		})
	}
}
