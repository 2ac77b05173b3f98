package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/averyn/modlaunch"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	launchFlags := &LaunchFlags{}
	stopFlags := &StopFlags{}
	statusFlags := &StatusFlags{}
	installFlags := &StatusFlags{}
	profileFlags := &ProfileFlags{}
	serveFlags := &ServeFlags{}

	cli := command{}

	root := &cobra.Command{
		Use:   "modlaunch",
		Short: "BepInEx game launcher and supervisor",
		Long: `Modlaunch starts game installations with or without their BepInEx
plugins, tracks the resulting process groups, and shuts them down
gracefully.

Examples:
  modlaunch launch --root=/games/valheim --executable=valheim.exe --mode=vanilla
  modlaunch launch --config=modlaunch.toml --name=valheim --mode=modded
  modlaunch serve --config=modlaunch.toml         # Start daemon
  modlaunch stop --name=valheim                   # Stop via daemon
  modlaunch status --api-url=http://remote:8900/api`,
	}

	root.AddCommand(
		createLaunchCommand(cli, launchFlags),
		createStopCommand(cli, stopFlags),
		createStatusCommand(cli, statusFlags),
		createInstallationsCommand(cli, installFlags),
		createProfileCommand(cli, profileFlags),
		createServeCommand(serveFlags),
	)
	return root
}

func addAPIFlags(cmd *cobra.Command, apiURL *string, apiTimeout *time.Duration) {
	cmd.Flags().StringVar(apiURL, "api-url", "", "daemon URL (e.g. http://host:8900/api)")
	cmd.Flags().DurationVar(apiTimeout, "api-timeout", 10*time.Second, "request timeout")
}

func createLaunchCommand(cli command, f *LaunchFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a game installation",
		Long: `Launch a game installation in vanilla or modded mode.

Without --api-url the game is started directly by this process and keeps
running after modlaunch exits; pass --wait to supervise it in the
foreground and stop it on Ctrl+C.

Examples:
  modlaunch launch --root=/games/valheim --executable=valheim.exe --mode=vanilla
  modlaunch launch --config=modlaunch.toml --name=valheim --mode=modded --wait
  modlaunch launch --name=valheim --mode=modded --api-url=http://127.0.0.1:8900/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Launch(*f)
		},
	}
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&f.Name, "name", "", "configured installation name")
	cmd.Flags().StringVar(&f.Root, "root", "", "installation root directory")
	cmd.Flags().StringVar(&f.Executable, "executable", "", "game executable, relative to the root")
	cmd.Flags().StringVar(&f.Mode, "mode", "modded", "launch mode: vanilla or modded")
	cmd.Flags().BoolVar(&f.Wait, "wait", false, "supervise in the foreground until the game exits")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createStopCommand(cli command, f *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running game",
		Long: `Stop the process group tracked for an installation: ask nicely first,
force-kill after the grace period.

Examples:
  modlaunch stop --name=valheim
  modlaunch stop --root=/games/valheim --api-url=http://remote:8900/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Stop(*f)
		},
	}
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&f.Name, "name", "", "configured installation name")
	cmd.Flags().StringVar(&f.Root, "root", "", "installation root directory")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createStatusCommand(cli command, f *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracked game process groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Status(*f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "configured installation name (all when empty)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createInstallationsCommand(cli command, f *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "installations",
		Short: "List configured installations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Installations(*f)
		},
	}
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file (list locally)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createProfileCommand(cli command, f *ProfileFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Operate on configured launch profiles",
	}
	launch := &cobra.Command{
		Use:   "launch",
		Short: "Launch every member of a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ProfileLaunch(*f)
		},
	}
	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop every member of a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ProfileStop(*f)
		},
	}
	for _, sub := range []*cobra.Command{launch, stop} {
		sub.Flags().StringVar(&f.Name, "name", "", "profile name (required)")
		addAPIFlags(sub, &f.APIUrl, &f.APITimeout)
		cmd.AddCommand(sub)
	}
	return cmd
}

func createServeCommand(f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Start the modlaunch daemon",
		Long: `Start the daemon that exposes the launch API over HTTP.
All configuration is loaded from the TOML config file.

Examples:
  modlaunch serve --config=modlaunch.toml
  modlaunch serve modlaunch.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f, args)
		},
	}
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file")
	return cmd
}

func runServe(f *ServeFlags, args []string) error {
	configPath := f.ConfigPath
	if len(args) > 0 {
		configPath = args[0]
	}
	if configPath == "" {
		return fmt.Errorf("config file required. Use --config=modlaunch.toml or provide as argument")
	}

	cfg, err := modlaunch.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Server == nil || cfg.Server.Listen == "" {
		return fmt.Errorf("[server] listen must be configured to run serve")
	}

	log := modlaunch.NewDaemonLogger(os.Stderr, slog.LevelInfo, true)

	l := modlaunch.New()
	l.SetLogger(log)
	l.SetGlobalEnv(cfg.Env)
	if cfg.StopWait > 0 {
		l.SetStopWait(cfg.StopWait)
	}
	if cfg.Log.Enabled() {
		l.SetGameLog(cfg.Log)
	}

	if cfg.History != nil && cfg.History.DSN != "" {
		sink, err := modlaunch.NewSQLHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		l.SetHistorySinks(sink)
		if closer, ok := sink.(io.Closer); ok {
			defer func() { _ = closer.Close() }()
		}
	}

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := modlaunch.RegisterMetricsDefault(); err != nil {
			log.Warn("metrics registration failed", "error", err)
		}
		if cfg.Metrics.Listen != "" {
			go func() {
				if err := modlaunch.ServeMetrics(cfg.Metrics.Listen); err != nil {
					log.Error("metrics server stopped", "error", err)
				}
			}()
		}
	}

	srv, err := modlaunch.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, l, cfg)
	if err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	log.Info("daemon started",
		"listen", cfg.Server.Listen,
		"base_path", cfg.Server.BasePath,
		"installations", len(cfg.Installations))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
	}

	// Stop every still-tracked game before exiting.
	for _, st := range l.Statuses() {
		out := l.Stop(modlaunch.Installation{Name: st.Name, Root: st.Key})
		if !out.Success {
			log.Warn("shutdown stop failed", "name", st.Name, "message", out.Message)
		}
	}
	return nil
}
