package compiler

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-polyexpr/internal/helpers"
)

// DefaultNoNameRoot is the identifier that starts a chain resolved against the
// context's no-name scopes, as in _.Now().
const DefaultNoNameRoot = "_"

// FunctionalOption configures a Compiler.
type FunctionalOption func(*Compiler) error

// WithNoNameRoot changes the identifier that introduces a no-name member chain.
func WithNoNameRoot(name string) FunctionalOption {
	return func(c *Compiler) error {
		if name == "" {
			return fmt.Errorf("no-name root cannot be empty")
		}
		c.noNameRoot = name
		return nil
	}
}

// WithLogHandler sets the handler compile diagnostics are logged through. It replaces
// any logger set earlier with WithLogger.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger sets the logger directly, keeping its groups and attributes.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "compiler", "Compiler")
	}
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("compiler has neither a log handler nor a logger")
	}
	return nil
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if c.noNameRoot == "" {
		c.noNameRoot = DefaultNoNameRoot
	}
}
