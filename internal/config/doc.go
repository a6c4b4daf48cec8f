// Package config provides the configuration system for touchemu.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← TOUCHEMU_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Basic Usage
//
//	cfg, err := config.Load("touchemu.toml")
//	if err != nil {
//	    return err
//	}
//	engine := touch.New(doc, cfg.EngineConfig())
//	cfg.Apply(engine)
//
// # Live Reload
//
// A Watcher reloads the file when it changes on disk and hands the new
// configuration to a callback:
//
//	w, err := config.NewWatcher("touchemu.toml", func(cfg *config.Config) {
//	    cfg.Apply(engine)
//	})
//	defer w.Close()
//
// Only the settings an engine accepts at runtime (touch scrolling and
// additional draggable types) take effect without a restart.
//
// # Environment Variables
//
// Variables are mapped by section and camel-cased key:
//
//	TOUCHEMU_EMULATION_MOVE_THRESHOLD=20   → emulation.moveThreshold
//	TOUCHEMU_REMOTE_ADDR=:9000             → remote.addr
//	TOUCHEMU_LOG_LEVEL=debug               → logging.level
package config
