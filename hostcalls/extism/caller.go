// Package extism exposes the exported functions of a WebAssembly plugin as free
// functions of expressions, through the Extism SDK on the wazero runtime.
//
// Each call instantiates the compiled plugin, passes the arguments as a JSON document
// of the form {"args": [...]}, and decodes the function output as JSON. Output that is
// not JSON is returned as a string.
package extism

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	extismSDK "github.com/extism/go-sdk"

	"github.com/robbyt/go-polyexpr/execution/constants"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/robbyt/go-polyexpr/internal/helpers"
)

// FunctionalOption configures a Caller.
type FunctionalOption func(*Caller) error

// WithLogHandler sets the log handler.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Caller) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		return nil
	}
}

// WithAllowedFunctions limits the plugin exports reachable from expressions.
func WithAllowedFunctions(names ...string) FunctionalOption {
	return func(c *Caller) error {
		if c.allowed == nil {
			c.allowed = make(map[string]bool, len(names))
		}
		for _, name := range names {
			c.allowed[name] = true
		}
		return nil
	}
}

// WithInstanceConfig overrides the per-call instance configuration.
func WithInstanceConfig(config extismSDK.PluginInstanceConfig) FunctionalOption {
	return func(c *Caller) error {
		c.instanceConfig = config
		return nil
	}
}

// Caller is an env.ExternalCaller backed by a compiled plugin. It is safe for
// concurrent use: every call runs in its own plugin instance.
type Caller struct {
	plugin         CompiledPlugin
	instanceConfig extismSDK.PluginInstanceConfig
	allowed        map[string]bool
	logHandler     slog.Handler
	logger         *slog.Logger
}

var _ env.ExternalCaller = (*Caller)(nil)

// New creates a Caller over plugin.
func New(plugin CompiledPlugin, opts ...FunctionalOption) (*Caller, error) {
	if plugin == nil {
		return nil, ErrNilPlugin
	}
	c := &Caller{
		plugin:         plugin,
		instanceConfig: NewPluginInstanceConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying caller option: %w", err)
		}
	}
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "extism", "Caller")
	return c, nil
}

// NewFromBytes compiles wasmBytes with default settings and returns a Caller over it.
func NewFromBytes(ctx context.Context, wasmBytes []byte, opts ...FunctionalOption) (*Caller, error) {
	plugin, err := CompileBytes(ctx, wasmBytes, nil)
	if err != nil {
		return nil, err
	}
	c, err := New(plugin, opts...)
	if err != nil {
		return nil, err
	}
	c.logger = c.logger.With("moduleID", helpers.ShortSHA256(wasmBytes, 12))
	return c, nil
}

func (c *Caller) String() string {
	return "extism.Caller"
}

// CallExternal implements env.ExternalCaller. Unknown or disallowed functions fail
// with a missing member error naming the function.
func (c *Caller) CallExternal(ctx context.Context, name string, args []value.Value) (value.Value, error) {
	logger := c.logger.With("function", name)
	if id, ok := ctx.Value(constants.ExprID).(string); ok {
		logger = logger.With("exprID", id)
	}

	if c.allowed != nil && !c.allowed[name] {
		return value.Null, &evalerr.MissingMemberError{Name: name, Err: ErrNotAllowed}
	}

	input, err := marshalArgs(args)
	if err != nil {
		return value.Null, err
	}

	instance, err := c.plugin.Instance(ctx, c.instanceConfig)
	if err != nil {
		return value.Null, fmt.Errorf("failed to create plugin instance: %w", err)
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			logger.WarnContext(ctx, "failed to close plugin instance", "error", err)
		}
	}()

	if !instance.FunctionExists(name) {
		return value.Null, &evalerr.MissingMemberError{Name: name, Err: ErrNotExported}
	}

	start := time.Now()
	exit, output, err := instance.CallWithContext(ctx, name, input)
	execTime := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return value.Null, fmt.Errorf("%w: cancelled: %w", ErrExecution, ctx.Err())
		}
		return value.Null, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	if exit != 0 {
		return value.Null, fmt.Errorf("%w: %d", ErrNonZeroExit, exit)
	}

	result, err := decodeOutput(output)
	if err != nil {
		return value.Null, err
	}
	logger.DebugContext(ctx, "call complete", "execTime", execTime, "type", result.Type().String())
	return result, nil
}

// Close releases the compiled plugin.
func (c *Caller) Close(ctx context.Context) error {
	return c.plugin.Close(ctx)
}

func marshalArgs(args []value.Value) ([]byte, error) {
	plain := make([]any, len(args))
	for i, a := range args {
		plain[i] = jsonValue(a)
	}
	b, err := json.Marshal(map[string]any{"args": plain})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalArgs, err)
	}
	return b, nil
}

// jsonValue renders v in a form whose JSON encoding a plugin can read back: chars,
// durations, and identifiers become strings.
func jsonValue(v value.Value) any {
	switch v.Kind() {
	case value.KindChar, value.KindDuration, value.KindIdentifier:
		return v.String()
	case value.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	}
	return v.Interface()
}

func decodeOutput(output []byte) (value.Value, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		return value.Null, nil
	}
	var result any
	d := json.NewDecoder(bytes.NewReader(output))
	d.UseNumber()
	if err := d.Decode(&result); err != nil {
		return value.String(string(output)), nil
	}
	v, err := value.FromGo(result)
	if err != nil {
		return value.Null, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return v, nil
}
