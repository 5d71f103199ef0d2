package options

import (
	"errors"
	"log/slog"

	"github.com/robbyt/go-polyexpr/execution/data"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/script"
)

var (
	ErrNoHandler        = errors.New("no log handler specified")
	ErrNoContext        = errors.New("no evaluation context specified")
	ErrNoCompiler       = errors.New("no compiler specified")
	ErrNegativeCapacity = errors.New("cache capacity cannot be negative")
)

// Config holds all configuration for creating an evaluator
type Config struct {
	// Logger for the evaluator
	handler slog.Handler
	// Evaluation context shared by every evaluation
	evalContext env.Context
	// Parser front end used on cache misses
	compiler script.Compiler
	// Data provider for per-call variables
	dataProvider data.Provider
	// Number of compiled expressions kept; zero selects the cache default
	cacheCapacity int
	// Disables cache locking for single-goroutine hosts
	cacheUnlocked bool
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithLogger sets the log handler for the evaluator
func WithLogger(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler != nil {
			c.handler = handler
		}
		return nil
	}
}

// WithContext sets the evaluation context
func WithContext(ec env.Context) Option {
	return func(c *Config) error {
		if ec != nil {
			c.evalContext = ec
		}
		return nil
	}
}

// WithCompiler sets the compiler
func WithCompiler(comp script.Compiler) Option {
	return func(c *Config) error {
		if comp != nil {
			c.compiler = comp
		}
		return nil
	}
}

// WithDataProvider sets the data provider for per-call variables
func WithDataProvider(provider data.Provider) Option {
	return func(c *Config) error {
		if provider != nil {
			c.dataProvider = provider
		}
		return nil
	}
}

// WithCacheCapacity sets the number of compiled expressions kept
func WithCacheCapacity(capacity int) Option {
	return func(c *Config) error {
		if capacity < 0 {
			return ErrNegativeCapacity
		}
		c.cacheCapacity = capacity
		return nil
	}
}

// WithoutCacheLocking disables locking in the expression cache
func WithoutCacheLocking() Option {
	return func(c *Config) error {
		c.cacheUnlocked = true
		return nil
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	switch {
	case c.handler == nil:
		return ErrNoHandler
	case c.evalContext == nil:
		return ErrNoContext
	case c.compiler == nil:
		return ErrNoCompiler
	case c.cacheCapacity < 0:
		return ErrNegativeCapacity
	}
	return nil
}

// GetHandler returns the configured log handler
func (c *Config) GetHandler() slog.Handler {
	return c.handler
}

// SetHandler sets the log handler
func (c *Config) SetHandler(handler slog.Handler) {
	c.handler = handler
}

// GetContext returns the configured evaluation context
func (c *Config) GetContext() env.Context {
	return c.evalContext
}

// SetContext sets the evaluation context
func (c *Config) SetContext(ec env.Context) {
	c.evalContext = ec
}

// GetCompiler returns the configured compiler
func (c *Config) GetCompiler() script.Compiler {
	return c.compiler
}

// SetCompiler sets the compiler
func (c *Config) SetCompiler(comp script.Compiler) {
	c.compiler = comp
}

// GetDataProvider returns the configured data provider
func (c *Config) GetDataProvider() data.Provider {
	return c.dataProvider
}

// SetDataProvider sets the data provider
func (c *Config) SetDataProvider(provider data.Provider) {
	c.dataProvider = provider
}

// GetCacheCapacity returns the configured cache capacity
func (c *Config) GetCacheCapacity() int {
	return c.cacheCapacity
}

// CacheLocking reports whether the expression cache locks
func (c *Config) CacheLocking() bool {
	return !c.cacheUnlocked
}
