package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/unit"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/touchemu/internal/backend/terminal"
	"github.com/dshills/touchemu/internal/backend/window"
	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/remote"
	"github.com/dshills/touchemu/internal/replay"
)

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "touchemu",
		Short: "Touch-to-mouse event emulation",
		Long: `touchemu turns touch input into the mouse events a desktop widget toolkit
expects: taps become clicks, drags on draggable widgets become mouse drags,
windowed lists scroll virtually and multi-finger gestures suspend emulation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (TOML or YAML)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newPlayCmd(c))
	root.AddCommand(newGioCmd(c))
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newReplayCmd(c))
	root.AddCommand(newVersionCmd(c))
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newPlayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Drive the demo scene in the terminal, the mouse acting as a finger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("play needs an interactive terminal")
			}
			if err := c.setup(true); err != nil {
				return err
			}

			pg, err := terminal.New(c.cfg.EngineConfig(),
				terminal.WithLogger(c.logger),
				terminal.WithEngineHook(pluginHook(c.cfg, c.logger)),
			)
			if err != nil {
				return err
			}
			defer pg.Close()
			c.watch(pg.Apply)

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating terminal screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing terminal screen: %w", err)
			}
			defer screen.Fini()

			ctx, stop := signalContext()
			defer stop()
			if err := pg.Run(ctx, screen); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newGioCmd(c *cli) *cobra.Command {
	var mouse bool
	cmd := &cobra.Command{
		Use:   "gio",
		Short: "Drive the demo scene in a window with a touch screen or the mouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(false); err != nil {
				return err
			}

			v, err := window.New(c.cfg.EngineConfig(),
				window.WithLogger(c.logger),
				window.WithEngineHook(pluginHook(c.cfg, c.logger)),
				window.WithMouse(mouse),
			)
			if err != nil {
				return err
			}
			c.watch(v.Apply)

			w := app.NewWindow(
				app.Title(window.Title),
				app.Size(unit.Dp(800), unit.Dp(300)),
			)
			ctx, stop := signalContext()
			go func() {
				<-ctx.Done()
				w.Perform(system.ActionClose)
			}()
			// app.Main never returns; the window loop exits the process.
			go func() {
				err := v.Run(w)
				stop()
				v.Close()
				c.close()
				if err != nil {
					fmt.Fprintf(c.stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
	cmd.Flags().BoolVar(&mouse, "mouse", true, "let the primary mouse button act as a finger")
	return cmd
}

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept touch input from browsers over a websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(false); err != nil {
				return err
			}
			rc := c.cfg.Remote
			if addr != "" {
				rc.Addr = addr
			}

			srv := remote.NewServer(rc, c.cfg.EngineConfig(),
				remote.WithLogger(c.logger),
				remote.WithEngineHook(pluginHook(c.cfg, c.logger)),
			)
			c.watch(func(cfg *config.Config) {
				srv.SetEngineConfig(cfg.EngineConfig())
			})

			ctx, stop := signalContext()
			defer stop()
			err := srv.ListenAndServe(ctx)
			c.logger.Info("served %d connections", srv.Accepted())
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides remote.addr)")
	return cmd
}

func newReplayCmd(c *cli) *cobra.Command {
	var realTime, quiet bool
	cmd := &cobra.Command{
		Use:   "replay trace.yaml...",
		Short: "Run recorded touch traces against the demo scene and print the events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(false); err != nil {
				return err
			}
			opts := []replay.Option{
				replay.WithEngineConfig(c.cfg.EngineConfig()),
				replay.WithLogger(c.logger),
				replay.WithRealTime(realTime),
			}
			if !quiet {
				opts = append(opts, replay.WithOutput(c.stdout))
			}
			player := replay.NewPlayer(opts...)

			ctx, stop := signalContext()
			defer stop()

			failed := false
			for _, path := range args {
				tr, err := replay.LoadFile(path)
				if err != nil {
					return err
				}
				if !quiet {
					fmt.Fprintf(c.stdout, "== %s\n", tr.Name)
				}
				res, err := player.Run(ctx, tr)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, res.Summary())
				if res.Failures > 0 {
					failed = true
				}
			}
			if failed {
				return errFailures
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&realTime, "real-time", false, "wait for step delays instead of only advancing the virtual clock")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary of each trace")
	return cmd
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "touchemu %s\n", version)
			fmt.Fprintf(c.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(c.stdout, "Built: %s (%s)\n", date, runtime.Version())
		},
	}
}
