package extism

import (
	"context"
	"encoding/base64"
	"fmt"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

// Settings holds configuration for compiling a WASM module
type Settings struct {
	// EnableWASI enables WASI support in the plugin
	EnableWASI bool
	// RuntimeConfig allows customizing the wazero runtime configuration
	RuntimeConfig wazero.RuntimeConfig
	// HostFunctions are additional host functions to be registered with the plugin
	HostFunctions []extismSDK.HostFunction
}

// DefaultSettings returns the default compilation settings.
func DefaultSettings() *Settings {
	return &Settings{
		EnableWASI:    true,
		RuntimeConfig: wazero.NewRuntimeConfig(),
	}
}

// CompileBase64 creates a compiled plugin from base64-encoded WASM content.
func CompileBase64(ctx context.Context, content string, opts *Settings) (CompiledPlugin, error) {
	wasmBytes, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBinary, err)
	}
	return CompileBytes(ctx, wasmBytes, opts)
}

// CompileBytes creates a compiled plugin from raw WASM bytes.
func CompileBytes(ctx context.Context, wasmBytes []byte, opts *Settings) (CompiledPlugin, error) {
	if len(wasmBytes) == 0 {
		return nil, ErrContentNil
	}
	if opts == nil {
		opts = DefaultSettings()
	}

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{Data: wasmBytes},
		},
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    opts.EnableWASI,
		RuntimeConfig: opts.RuntimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, opts.HostFunctions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return NewCompiledPluginAdapter(plugin), nil
}
