package env

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Env composes the environment handed to launched games. Precedence, lowest
// first: the supervisor's own OS environment, global overrides from config,
// then per-installation entries. Values may reference other variables with
// ${VAR}; expansion is a single pass over the composed map.
//
// Typical use is carrying doorstop/Wine knobs such as
// WINEDLLOVERRIDES=winhttp=n,b for modded launches under Proton.
//
// All methods are safe for concurrent use; launches for different
// installations merge in parallel.
type Env struct {
	mu     sync.Mutex
	global map[string]string
	base   map[string]string // cached OS environment
}

func New() *Env {
	return &Env{global: make(map[string]string)}
}

// Set adds or replaces a global override.
func (e *Env) Set(key, value string) {
	if key == "" {
		return
	}
	e.mu.Lock()
	e.global[key] = value
	e.mu.Unlock()
}

// SetAll applies a list of "KEY=VALUE" entries as global overrides,
// ignoring malformed items.
func (e *Env) SetAll(kvs []string) {
	e.mu.Lock()
	for k, v := range parsePairs(kvs) {
		e.global[k] = v
	}
	e.mu.Unlock()
}

// Unset drops a global override.
func (e *Env) Unset(key string) {
	e.mu.Lock()
	delete(e.global, key)
	e.mu.Unlock()
}

// CacheOS snapshots the current process environment as the base layer.
// Merge takes the snapshot lazily when it has not been taken yet.
func (e *Env) CacheOS() {
	e.mu.Lock()
	e.base = parsePairs(os.Environ())
	e.mu.Unlock()
}

// Merge returns the final "KEY=VALUE" slice for one launch, applying the
// per-installation entries on top of the globals. The result is sorted for
// deterministic tests and logs.
func (e *Env) Merge(perInstall []string) []string {
	e.mu.Lock()
	if e.base == nil {
		e.base = parsePairs(os.Environ())
	}
	m := make(map[string]string, len(e.base)+len(e.global)+len(perInstall))
	for k, v := range e.base {
		m[k] = v
	}
	for k, v := range e.global {
		m[k] = v
	}
	e.mu.Unlock()
	for k, v := range parsePairs(perInstall) {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	sort.Strings(out)
	return out
}

func parsePairs(kvs []string) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		m[kv[:i]] = kv[i+1:]
	}
	return m
}

// expand substitutes ${VAR} occurrences from the composed map. One pass, no
// recursion; unknown variables expand to empty.
func expand(s string, m map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, func(k string) string {
		if v, ok := m[k]; ok {
			return v
		}
		return ""
	})
}
