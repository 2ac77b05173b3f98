package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/averyn/modlaunch"
	"github.com/averyn/modlaunch/pkg/client"
)

// command Method-style handlers so tests can call them without cobra.
type command struct{}

// remote builds an API client for the given URL, falling back to the local
// daemon default when none is set.
func (c command) remote(apiURL string, timeout time.Duration) *client.Client {
	cfg := client.DefaultConfig()
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return client.New(cfg)
}

// Launch starts an installation. With --api-url the request goes to a
// daemon; otherwise the game is launched directly from this process.
func (c command) Launch(f LaunchFlags) error {
	mode, err := modlaunch.ParseMode(f.Mode)
	if err != nil {
		return err
	}

	if f.APIUrl != "" {
		api := c.remote(f.APIUrl, f.APITimeout)
		ctx := context.Background()
		var out modlaunch.Outcome
		if f.Name != "" {
			// The daemon resolves configured names itself.
			out, err = api.Launch(ctx, f.Name, mode)
		} else {
			inst, rerr := resolveInstallation("", "", f.Root, f.Executable)
			if rerr != nil {
				return rerr
			}
			out, err = api.LaunchInstallation(ctx, inst, mode)
		}
		if err != nil {
			return err
		}
		printJSON(out)
		if !out.Success {
			return fmt.Errorf("launch refused: %s", out.Message)
		}
		return nil
	}

	inst, err := resolveInstallation(f.ConfigPath, f.Name, f.Root, f.Executable)
	if err != nil {
		return err
	}
	return c.launchLocally(inst, mode, f.Wait)
}

func (c command) launchLocally(inst modlaunch.Installation, mode modlaunch.Mode, wait bool) error {
	l := modlaunch.New()
	l.SetLogger(modlaunch.DefaultLogger())

	out := l.Launch(inst, mode)
	printJSON(out)
	if !out.Success {
		return fmt.Errorf("launch refused: %s", out.Message)
	}
	if !wait {
		// The game keeps running after this process exits.
		return nil
	}

	// Foreground supervision: wait until the game exits on its own or a
	// signal asks us to shut it down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-sigCh:
			stop := l.Stop(inst)
			printJSON(stop)
			if !stop.Success {
				return fmt.Errorf("stop failed: %s", stop.Message)
			}
			return nil
		case <-tick.C:
			if st, ok := l.Status(inst); !ok || !st.Alive {
				_ = l.Stop(inst)
				return nil
			}
		}
	}
}

// Stop asks the daemon to stop an installation. Stopping needs the registry
// that tracked the launch, so this always goes through the API.
func (c command) Stop(f StopFlags) error {
	api := c.remote(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if !api.IsReachable(ctx) {
		return fmt.Errorf("daemon not reachable - start one with 'modlaunch serve' or pass --api-url")
	}
	var (
		out modlaunch.Outcome
		err error
	)
	switch {
	case f.Name != "" && f.Root != "":
		return fmt.Errorf("use either --name or --root, not both")
	case f.Name != "":
		out, err = api.Stop(ctx, f.Name)
	case f.Root != "":
		out, err = api.StopRoot(ctx, f.Root)
	default:
		return fmt.Errorf("--name or --root is required")
	}
	if err != nil {
		return err
	}
	printJSON(out)
	if !out.Success {
		return fmt.Errorf("stop refused: %s", out.Message)
	}
	return nil
}

// Status prints tracked groups from the daemon.
func (c command) Status(f StatusFlags) error {
	api := c.remote(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if !api.IsReachable(ctx) {
		return fmt.Errorf("daemon not reachable - start one with 'modlaunch serve' or pass --api-url")
	}
	if f.Name != "" {
		st, err := api.Status(ctx, f.Name)
		if err != nil {
			return err
		}
		printJSON(st)
		return nil
	}
	sts, err := api.Statuses(ctx)
	if err != nil {
		return err
	}
	printJSON(sts)
	return nil
}

// Installations lists configured installations, locally from --config or
// from the daemon.
func (c command) Installations(f StatusFlags) error {
	if f.ConfigPath != "" {
		cfg, err := modlaunch.LoadConfig(f.ConfigPath)
		if err != nil {
			return err
		}
		printJSON(cfg.Installations)
		return nil
	}
	api := c.remote(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if !api.IsReachable(ctx) {
		return fmt.Errorf("daemon not reachable - start one with 'modlaunch serve' or pass --api-url")
	}
	insts, err := api.Installations(ctx)
	if err != nil {
		return err
	}
	printJSON(insts)
	return nil
}

// ProfileLaunch starts every member of a configured profile via the daemon.
func (c command) ProfileLaunch(f ProfileFlags) error {
	return c.profileCall(f, func(ctx context.Context, api *client.Client) (modlaunch.Outcome, error) {
		return api.LaunchProfile(ctx, f.Name)
	})
}

// ProfileStop stops every member of a configured profile via the daemon.
func (c command) ProfileStop(f ProfileFlags) error {
	return c.profileCall(f, func(ctx context.Context, api *client.Client) (modlaunch.Outcome, error) {
		return api.StopProfile(ctx, f.Name)
	})
}

func (c command) profileCall(f ProfileFlags, call func(context.Context, *client.Client) (modlaunch.Outcome, error)) error {
	if f.Name == "" {
		return fmt.Errorf("--name is required")
	}
	api := c.remote(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if !api.IsReachable(ctx) {
		return fmt.Errorf("daemon not reachable - start one with 'modlaunch serve' or pass --api-url")
	}
	out, err := call(ctx, api)
	if err != nil {
		return err
	}
	printJSON(out)
	if !out.Success {
		return fmt.Errorf("profile operation refused: %s", out.Message)
	}
	return nil
}
