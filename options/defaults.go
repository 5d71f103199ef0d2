package options

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-polyexpr/compiler"
	"github.com/robbyt/go-polyexpr/execution/constants"
	"github.com/robbyt/go-polyexpr/execution/data"
	"github.com/robbyt/go-polyexpr/execution/env"
)

// DefaultConfig initializes a Config with sensible defaults
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := WithDefaults()(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultHandler returns the default logging handler
func DefaultHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, nil)
}

// DefaultDataProvider returns the default data provider, which reads per-call
// variables stored in the context by PrepareContext
func DefaultDataProvider() data.Provider {
	return data.NewContextProvider(constants.EvalData)
}

// WithDefaults applies default values to any config properties that are nil
func WithDefaults() Option {
	return func(c *Config) error {
		if c.handler == nil {
			c.handler = DefaultHandler()
		}

		if c.dataProvider == nil {
			c.dataProvider = DefaultDataProvider()
		}

		if c.evalContext == nil {
			ec, err := env.New(env.WithLogHandler(c.handler))
			if err != nil {
				return fmt.Errorf("failed to create default context: %w", err)
			}
			c.evalContext = ec
		}

		if c.compiler == nil {
			comp, err := compiler.New(compiler.WithLogHandler(c.handler))
			if err != nil {
				return fmt.Errorf("failed to create default compiler: %w", err)
			}
			c.compiler = comp
		}

		return nil
	}
}
