// Package main is the entry point for touchemu, the touch-to-mouse event
// emulation playground, bridge and trace runner.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errFailures marks a command that ran but observed engine failures.
var errFailures = errors.New("engine reported failures")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// cli carries the state shared by the subcommands.
type cli struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  *logging.Logger
	closers []io.Closer
}

// setup loads the configuration and builds the logger. Interactive
// commands keep log output off the terminal unless a log file is set.
func (c *cli) setup(interactive bool) error {
	if c.logLevel != "" && !logging.ValidLevel(c.logLevel) {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.logLevel)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	c.cfg = cfg

	lc := cfg.LoggerConfig()
	lc.Output = c.stderr
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		c.closers = append(c.closers, f)
		lc.Output = f
	case interactive:
		lc.Output = io.Discard
	}
	c.logger = logging.New(lc)

	if cfg.Source != "" {
		c.logger.Debug("configuration loaded from %s", cfg.Source)
	}
	return nil
}

// watch reloads the configuration file on change, if there is one.
func (c *cli) watch(onReload config.ReloadFunc) {
	if c.cfg.Source == "" {
		return
	}
	w, err := config.NewWatcher(c.cfg.Source, func(cfg *config.Config) {
		c.logger.Info("configuration reloaded from %s", cfg.Source)
		onReload(cfg)
	}, config.WithErrorHandler(func(err error) {
		c.logger.Warn("configuration reload: %v", err)
	}))
	if err != nil {
		c.logger.Warn("not watching %s: %v", c.cfg.Source, err)
		return
	}
	c.closers = append(c.closers, w)
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
}
