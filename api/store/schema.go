/* schema.go
 * Contains the settings schema: every key with its type and default value
 */

package store

import (
	"fmt"
	"slices"
)

// Settings keys
const (
	KeyEnabled               = "enabled"
	KeyUpdateInterval        = "update-interval"
	KeyNumWindows            = "num-windows"
	KeyMatchDisplayDuration  = "match-display-duration"
	KeyKeepCompletedDuration = "keep-completed-duration"
	KeyOnlyShowLiveMatches   = "only-show-live-matches"
	KeyAutoHideNoLiveMatches = "auto-hide-no-live-matches"
	KeyAutoSelectLiveMatches = "auto-select-live-matches"
	KeySelectedMatches       = "selected-matches"
	KeyAutoViewNewMatches    = "auto-view-new-matches"
	KeyAutoSelectCountries   = "auto-select-country-codes"
	KeyAutoSelectNames       = "auto-select-player-names"
	KeyLiveWindowSizeX       = "live-window-size-x"
	KeyLiveWindowSizeY       = "live-window-size-y"
	KeyEnableDebugLogging    = "enable-debug-logging"
)

// EnableKey returns the key that enables the source with the given setting key, e.g. "atp" -> "enable-atp"
func EnableKey(sourceKey string) string {
	return "enable-" + sourceKey
}

type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindStrv
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindStrv:
		return "string list"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Entry struct {
	Kind    Kind
	Default any
}

// Schema maps every known key to its type and default
var Schema = map[string]Entry{
	KeyEnabled:               {KindBool, false},
	KeyUpdateInterval:        {KindInt, 15},
	KeyNumWindows:            {KindInt, 1},
	KeyMatchDisplayDuration:  {KindInt, 10},
	KeyKeepCompletedDuration: {KindInt, 30},
	KeyOnlyShowLiveMatches:   {KindBool, true},
	KeyAutoHideNoLiveMatches: {KindBool, true},
	KeyAutoSelectLiveMatches: {KindBool, false},
	KeySelectedMatches:       {KindStrv, []string{}},
	KeyAutoViewNewMatches:    {KindStrv, []string{}},
	KeyAutoSelectCountries:   {KindStrv, []string{}},
	KeyAutoSelectNames:       {KindStrv, []string{}},
	KeyLiveWindowSizeX:       {KindInt, 460},
	KeyLiveWindowSizeY:       {KindInt, 160},
	KeyEnableDebugLogging:    {KindBool, false},

	EnableKey("atp"):            {KindBool, true},
	EnableKey("wta"):            {KindBool, true},
	EnableKey("atp-challenger"): {KindBool, false},
	EnableKey("tt"):             {KindBool, false},
}

// Keys returns every schema key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(Schema))
	for k := range Schema {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// lookup validates the key and its kind
func lookup(key string, kind Kind) (Entry, error) {
	entry, ok := Schema[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if entry.Kind != kind {
		return Entry{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrWrongType, key, entry.Kind, kind)
	}
	return entry, nil
}

// Defaults returns a fresh copy of every default value
func Defaults() map[string]any {
	values := make(map[string]any, len(Schema))
	for k, e := range Schema {
		if e.Kind == KindStrv {
			values[k] = slices.Clone(e.Default.([]string))
			continue
		}
		values[k] = e.Default
	}
	return values
}
