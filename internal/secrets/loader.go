// Package secrets copies named secret groups from a managed secret store into
// the process environment at startup.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Fetcher returns the raw secret string stored under a group name.
type Fetcher interface {
	FetchSecret(ctx context.Context, name string) (string, error)
}

// Result summarises a Load call.
type Result struct {
	Loaded []string
	Failed map[string]error
	// Keys lists every environment variable name that was set.
	Keys []string
}

// Loader reads secret groups and exports their key/value pairs with Setenv.
type Loader struct {
	fetcher Fetcher
	setenv  func(key, value string) error
}

// NewLoader creates a Loader backed by the given Fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher, setenv: os.Setenv}
}

// ParseGroups splits a comma-separated group list, dropping blanks.
func ParseGroups(raw string) []string {
	var groups []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// Load fetches each group in order. A group that cannot be fetched or decoded
// is logged and skipped; the remaining groups are still loaded.
func (l *Loader) Load(ctx context.Context, groups []string) Result {
	res := Result{Failed: make(map[string]error)}

	for _, group := range groups {
		if ctx.Err() != nil {
			res.Failed[group] = ctx.Err()
			continue
		}

		keys, err := l.loadGroup(ctx, group)
		if err != nil {
			slog.Warn("secret group not loaded", "group", group, "error", err)
			res.Failed[group] = err
			continue
		}

		res.Loaded = append(res.Loaded, group)
		res.Keys = append(res.Keys, keys...)
	}

	sort.Strings(res.Keys)
	return res
}

func (l *Loader) loadGroup(ctx context.Context, group string) ([]string, error) {
	raw, err := l.fetcher.FetchSecret(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("fetching secret: %w", err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decoding secret: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k, v := range values {
		s, ok, err := secretValue(v)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := l.setenv(k, s); err != nil {
			return nil, fmt.Errorf("setting %s: %w", k, err)
		}
		keys = append(keys, k)
	}

	return keys, nil
}

// secretValue returns strings unquoted and any other JSON value as its
// compacted source text, so numbers keep their exact digits. ok is false for
// null.
func secretValue(v json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(v)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return "", false, nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	}
}
