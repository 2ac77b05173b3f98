package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/averyn/modlaunch"
)

// resolveInstallation builds the target installation from flags: a name
// looked up in --config, or an ad-hoc --root/--executable pair.
func resolveInstallation(configPath, name, root, executable string) (modlaunch.Installation, error) {
	if name != "" && root != "" {
		return modlaunch.Installation{}, fmt.Errorf("use either --name or --root, not both")
	}
	if name != "" {
		if configPath == "" {
			return modlaunch.Installation{}, fmt.Errorf("--name needs --config to resolve the installation")
		}
		cfg, err := modlaunch.LoadConfig(configPath)
		if err != nil {
			return modlaunch.Installation{}, err
		}
		inst, ok := cfg.Installation(name)
		if !ok {
			return modlaunch.Installation{}, fmt.Errorf("installation %q not found in %s", name, configPath)
		}
		return inst, nil
	}
	if root == "" {
		return modlaunch.Installation{}, fmt.Errorf("--name or --root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return modlaunch.Installation{}, err
	}
	inst := modlaunch.Installation{
		Name:       filepath.Base(abs),
		Root:       abs,
		Executable: executable,
	}
	if err := inst.Validate(); err != nil {
		return modlaunch.Installation{}, err
	}
	return inst, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
