// Package prefs serves IDN preferences from a YAML, JSON or TOML file and
// reports which keys changed when the file is rewritten.
//
// Keys are the dotted preference names. Nesting and dotted keys are
// equivalent, so both of these set the restriction profile:
//
//	network:
//	  IDN:
//	    restriction_profile: high
//
//	"network.IDN.restriction_profile": high
package prefs

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/parsers"
)

// ErrUnsupportedFormat is returned for a file that is not YAML, JSON or TOML.
var ErrUnsupportedFormat = errors.New("unsupported preference file format")

// File is a file-backed preference source. It is safe for concurrent use.
type File struct {
	path   string
	parser koanf.Parser
	logger log.Logger

	mu     sync.RWMutex
	values map[string]string
}

// Open reads the preference file at path.
func Open(path string, logger log.Logger) (*File, error) {
	parser := parsers.ParserFor(filepath.Ext(path))
	if parser == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	f := &File{path: path, parser: parser, logger: logger}
	if _, err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// String returns the value of key. Scalars are formatted with fmt; lists
// are joined with commas.
func (f *File) String(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

// Reload re-reads the file and returns the sorted keys that were added,
// removed or changed. On error the previous values stay in effect.
func (f *File) Reload() ([]string, error) {
	next, err := f.load()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	prev := f.values
	f.values = next
	f.mu.Unlock()
	return changedKeys(prev, next), nil
}

// Watch calls onChange once for every changed key each time the file is
// written. It returns once the watch is established.
func (f *File) Watch(onChange func(key string)) error {
	return file.Provider(f.path).Watch(func(_ interface{}, err error) {
		if err != nil {
			f.logger.Warn(map[string]any{"path": f.path, "error": err.Error()}, "prefs_watch_error")
			return
		}
		keys, err := f.Reload()
		if err != nil {
			f.logger.Warn(map[string]any{"path": f.path, "error": err.Error()}, "prefs_reload_failed")
			return
		}
		f.logger.Debug(map[string]any{"path": f.path, "changed": len(keys)}, "prefs_reloaded")
		for _, k := range keys {
			onChange(k)
		}
	})
}

func (f *File) load() (map[string]string, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(f.path), f.parser); err != nil {
		return nil, fmt.Errorf("failed to load preference file %s: %w", f.path, err)
	}
	all := k.All()
	out := make(map[string]string, len(all))
	for key, v := range all {
		out[key] = stringify(v)
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, elem := range t {
			parts = append(parts, stringify(elem))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func changedKeys(prev, next map[string]string) []string {
	var keys []string
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// WatchFile calls onChange(key) each time the file at path is written. It
// lets a data file, such as a blocklist, raise a preference change.
func WatchFile(path, key string, logger log.Logger, onChange func(key string)) error {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			logger.Warn(map[string]any{"path": path, "error": err.Error()}, "file_watch_error")
			return
		}
		logger.Debug(map[string]any{"path": path, "key": key}, "file_changed")
		onChange(key)
	})
}
