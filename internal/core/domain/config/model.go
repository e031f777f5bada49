package configdomain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entry represents a single configuration value with provenance and priority.
type Entry struct {
	Key        string
	Value      interface{}
	Source     string
	SourcePath string
	Priority   int
}

// Priorities used by the loaders. Lower number wins.
const (
	PriorityFlag    = 1
	PriorityEnv     = 2
	PriorityFile    = 3
	PriorityDefault = 5
)

// Snapshot is a collection of config entries keyed by field name.
type Snapshot map[string]Entry

// Merge merges another snapshot into this one respecting priority
// (lower number indicates higher priority).
func (s Snapshot) Merge(other Snapshot) {
	for k, e := range other {
		if existing, ok := s[k]; !ok || e.Priority <= existing.Priority {
			s[k] = e
		}
	}
}

// Keys returns the field names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value of key as a string.
func (s Snapshot) String(key string) string {
	e, ok := s[key]
	if !ok || e.Value == nil {
		return ""
	}
	if v, ok := e.Value.(string); ok {
		return v
	}
	return fmt.Sprint(e.Value)
}

// Bool returns the value of key as a bool. Strings are parsed with strconv.
func (s Snapshot) Bool(key string) (bool, error) {
	e, ok := s[key]
	if !ok || e.Value == nil {
		return false, nil
	}
	switch v := e.Value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%s: invalid boolean %q from %s", key, v, e.Source)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s: expected boolean from %s, got %T", key, e.Source, e.Value)
	}
}

// Duration returns the value of key as a duration.
func (s Snapshot) Duration(key string) (time.Duration, error) {
	e, ok := s[key]
	if !ok || e.Value == nil {
		return 0, nil
	}
	switch v := e.Value.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid duration %q from %s", key, v, e.Source)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s: expected duration from %s, got %T", key, e.Source, e.Value)
	}
}

// Strings returns the value of key as a list. Comma separated strings are split.
func (s Snapshot) Strings(key string) []string {
	e, ok := s[key]
	if !ok || e.Value == nil {
		return nil
	}
	var out []string
	switch v := e.Value.(type) {
	case []string:
		out = append(out, v...)
	case []interface{}:
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
