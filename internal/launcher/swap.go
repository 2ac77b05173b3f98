package launcher

import (
	"fmt"
	"log/slog"
	"os"
)

// hiddenSuffix is appended to the plugin directory name while a vanilla
// launch is in flight. Rename keeps the operation near-constant-time no
// matter how large the plugin directory is.
const hiddenSuffix = ".disabled"

// swapState is the transient record of one in-flight vanilla swap. It lives
// only for the duration of a single launch call and is never shared.
type swapState struct {
	original string
	hidden   string
	active   bool
}

// hidePluginDir renames dir out of the loader's scan path so a vanilla
// launch sees no plugins. A missing dir is a no-op (inactive state). A stale
// hidden directory from a previous incomplete run is deleted first:
// last-hidden-wins, no merging.
func hidePluginDir(dir string) (swapState, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return swapState{}, nil
	}
	hidden := dir + hiddenSuffix
	if _, err := os.Stat(hidden); err == nil {
		if err := os.RemoveAll(hidden); err != nil {
			return swapState{}, fmt.Errorf("remove stale hidden dir %s: %w", hidden, err)
		}
	}
	if err := os.Rename(dir, hidden); err != nil {
		return swapState{}, fmt.Errorf("hide plugin dir %s: %w", dir, err)
	}
	return swapState{original: dir, hidden: hidden, active: true}, nil
}

// restore renames the hidden directory back into place. It runs in the
// cleanup path after the launch outcome is already committed, so it never
// reports an error to the caller; a failed restore leaves the plugin
// directory hidden, which a later launch recovers from via the stale-hidden
// cleanup above.
//
// Restore runs right after the spawn call returns and does not wait for the
// launched process to exit: the loader reads its plugin directory once at
// startup, and keeping the stop/launch path non-blocking is preferred over
// an airtight window.
func (s swapState) restore(log *slog.Logger) {
	if !s.active {
		return
	}
	if _, err := os.Stat(s.original); err == nil {
		// The original path reappeared through some other means; never
		// overwrite it.
		log.Warn("plugin directory reappeared, leaving hidden copy in place",
			"dir", s.original, "hidden", s.hidden)
		return
	}
	if _, err := os.Stat(s.hidden); err != nil {
		return
	}
	if err := os.Rename(s.hidden, s.original); err != nil {
		log.Warn("plugin directory left hidden", "hidden", s.hidden, "error", err)
	}
}
