package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/imagepipe/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue string  `env:"STRING_VALUE" default:"default"`
	IntValue    int     `env:"INT_VALUE" default:"42"`
	SizeValue   int64   `env:"SIZE_VALUE" default:"5242880"`
	FloatValue  float64 `env:"FLOAT_VALUE" default:"0.8"`
	BoolValue   bool    `env:"BOOL_VALUE" default:"true"`
	NoEnvTag    string
	Nested      testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	Width int `env:"WIDTH" default:"800"`
}

func defaults() testConfig {
	return testConfig{
		StringValue: "default",
		IntValue:    42,
		SizeValue:   5242880,
		FloatValue:  0.8,
		BoolValue:   true,
		Nested:      testNestedConfig{Width: 800},
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		modify  func(*testConfig)
		wantErr bool
	}{
		{
			name: "uses defaults when nothing is set",
		},
		{
			name: "reads plain variables",
			envVars: map[string]string{
				"STRING_VALUE": "env-value",
				"INT_VALUE":    "123",
				"FLOAT_VALUE":  "0.6",
				"BOOL_VALUE":   "false",
				"NESTED_WIDTH": "600",
			},
			modify: func(c *testConfig) {
				c.StringValue = "env-value"
				c.IntValue = 123
				c.FloatValue = 0.6
				c.BoolValue = false
				c.Nested.Width = 600
			},
		},
		{
			name:    "reads namespaced variables",
			prefix:  "APP",
			envVars: map[string]string{"APP_STRING_VALUE": "prefixed"},
			modify:  func(c *testConfig) { c.StringValue = "prefixed" },
		},
		{
			name:   "prefers the more specific namespace",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"APP_STRING_VALUE":         "less-specific",
				"APP_SERVICE_STRING_VALUE": "more-specific",
				"APP_NESTED_WIDTH":         "1024",
			},
			modify: func(c *testConfig) {
				c.StringValue = "more-specific"
				c.Nested.Width = 1024
			},
		},
		{
			name:    "keeps empty strings",
			envVars: map[string]string{"STRING_VALUE": ""},
			modify:  func(c *testConfig) { c.StringValue = "" },
		},
		{
			name:    "fails on invalid int",
			envVars: map[string]string{"INT_VALUE": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "fails on invalid float",
			envVars: map[string]string{"FLOAT_VALUE": "high"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool",
			envVars: map[string]string{"BOOL_VALUE": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			var cfg testConfig

			err := Parse(context.Background(), &cfg, tt.prefix)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			want := defaults()
			if tt.modify != nil {
				tt.modify(&want)
			}

			assert.Equal(t, tt.prefix, cfg.Namespace())
			cfg.EnvConfig = EnvConfig{}
			assert.Equal(t, want, cfg)
		})
	}
}

func TestParseRejectsInvalidTargets(t *testing.T) {
	t.Parallel()

	var plain struct{ Value string }

	require.ErrorIs(t, Parse(context.Background(), &plain, ""), ErrInvalidConfig)
	require.ErrorIs(t, Parse(context.Background(), testConfig{}, ""), ErrInvalidConfig)
}

//nolint:paralleltest
func TestParseMissingVariable(t *testing.T) {
	var cfg struct {
		EnvConfig

		Required string `env:"IMAGEPIPE_TEST_REQUIRED"`
	}

	require.ErrorIs(t, Parse(context.Background(), &cfg, ""), ErrVarNotSet)

	t.Setenv("IMAGEPIPE_TEST_REQUIRED", "set")
	require.NoError(t, Parse(context.Background(), &cfg, ""))
	assert.Equal(t, "set", cfg.Required)
}

//nolint:paralleltest
func TestParseUnsupportedType(t *testing.T) {
	var cfg struct {
		EnvConfig

		Sizes []int `env:"SIZES" default:"1,2"`
	}

	require.ErrorIs(t, Parse(context.Background(), &cfg, ""), ErrUnsupportedVarType)
}
