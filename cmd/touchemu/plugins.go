package main

import (
	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/plugin/lua"
	"github.com/dshills/touchemu/internal/touch"
)

// pluginHook returns an engine hook loading the configured Lua scripts
// into a host bound to each new engine, or nil when plugins are off.
func pluginHook(cfg *config.Config, logger *logging.Logger) func(*touch.Engine) (func(), error) {
	pc := cfg.Plugins
	if !pc.Enabled || len(pc.Scripts) == 0 {
		return nil
	}
	scripts := append([]string(nil), pc.Scripts...)
	return func(e *touch.Engine) (func(), error) {
		host := lua.NewHost(e, logger,
			lua.WithExecutionTimeout(pc.Timeout.Std()),
			lua.WithRegistryLimit(pc.MemoryLimit),
		)
		// A broken script is reported and skipped; the others still load.
		if err := host.LoadFiles(scripts...); err != nil {
			logger.Warn("plugins: %v", err)
		}
		return func() {
			if err := host.Close(); err != nil {
				logger.Warn("closing plugin host: %v", err)
			}
		}, nil
	}
}
