/* overrides.go
 * Contains helpers to seed settings from environment variables, e.g. LIVE_TENNIS_ENABLED=true or
 * LIVE_TENNIS_AUTO_SELECT_PLAYER_NAMES='Sinner, "De Minaur"'
 */

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-andiamo/splitter"
)

// EnvPrefix is prepended to the upper-cased, underscored key name
const EnvPrefix = "LIVE_TENNIS_"

// EnvName returns the environment variable overriding key
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// ParseList splits a comma separated list. Entries containing commas can be double quoted.
// Preconditions: Receives the raw list
// Postconditions: Returns the trimmed, unquoted, non-empty entries or an error if quotes are unbalanced
func ParseList(raw string) ([]string, error) {
	commaSplitter, err := splitter.NewSplitter(',', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := commaSplitter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("error splitting list: %w", err)
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "\"“”")
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out, nil
}

// ApplyOverrides writes every schema key that has a value in getenv into s.
// Preconditions: Receives the store and an environment lookup function (os.Getenv)
// Postconditions: Returns the keys that were written, or the first parse or store error
func ApplyOverrides(ctx context.Context, s Settings, getenv func(string) string) ([]string, error) {
	var applied []string
	for _, key := range Keys() {
		raw := strings.TrimSpace(getenv(EnvName(key)))
		if raw == "" {
			continue
		}
		var err error
		switch Schema[key].Kind {
		case KindBool:
			var b bool
			b, err = strconv.ParseBool(raw)
			if err == nil {
				err = s.SetBoolean(ctx, key, b)
			}
		case KindInt:
			var n int
			n, err = strconv.Atoi(raw)
			if err == nil {
				err = s.SetInt(ctx, key, n)
			}
		case KindStrv:
			var list []string
			list, err = ParseList(raw)
			if err == nil {
				err = s.SetStrv(ctx, key, list)
			}
		}
		if err != nil {
			return applied, fmt.Errorf("error applying %s: %w", EnvName(key), err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}
