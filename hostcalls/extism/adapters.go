package extism

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

// CompiledPlugin is the subset of *extismSDK.CompiledPlugin the caller uses.
type CompiledPlugin interface {
	Instance(ctx context.Context, config extismSDK.PluginInstanceConfig) (PluginInstance, error)
	Close(ctx context.Context) error
}

// PluginInstance is the subset of *extismSDK.Plugin the caller uses.
type PluginInstance interface {
	Call(name string, data []byte) (uint32, []byte, error)
	CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error)
	FunctionExists(name string) bool
	Close(ctx context.Context) error
}

type sdkCompiledPlugin struct {
	plugin *extismSDK.CompiledPlugin
}

// NewCompiledPluginAdapter wraps an SDK plugin. It returns nil for a nil plugin.
func NewCompiledPluginAdapter(plugin *extismSDK.CompiledPlugin) CompiledPlugin {
	if plugin == nil {
		return nil
	}
	return &sdkCompiledPlugin{plugin: plugin}
}

func (p *sdkCompiledPlugin) Instance(
	ctx context.Context,
	config extismSDK.PluginInstanceConfig,
) (PluginInstance, error) {
	instance, err := p.plugin.Instance(ctx, config)
	if err != nil {
		return nil, err
	}
	return &sdkPluginAdapter{plugin: instance}, nil
}

func (p *sdkCompiledPlugin) Close(ctx context.Context) error {
	return p.plugin.Close(ctx)
}

type sdkPluginAdapter struct {
	plugin *extismSDK.Plugin
}

func (p *sdkPluginAdapter) Call(name string, data []byte) (uint32, []byte, error) {
	return p.plugin.Call(name, data)
}

func (p *sdkPluginAdapter) CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error) {
	return p.plugin.CallWithContext(ctx, name, data)
}

func (p *sdkPluginAdapter) FunctionExists(name string) bool {
	return p.plugin.FunctionExists(name)
}

func (p *sdkPluginAdapter) Close(ctx context.Context) error {
	return p.plugin.Close(ctx)
}

// NewPluginInstanceConfig returns the instance configuration used for each call.
func NewPluginInstanceConfig() extismSDK.PluginInstanceConfig {
	return extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig(),
	}
}
