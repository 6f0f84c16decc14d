/* overrides_test.go
 * Contains unit tests for environment overrides and list parsing
 */

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvName(t *testing.T) {
	assert.Equal(t, "LIVE_TENNIS_AUTO_SELECT_PLAYER_NAMES", EnvName(KeyAutoSelectNames))
	assert.Equal(t, "LIVE_TENNIS_ENABLE_ATP_CHALLENGER", EnvName(EnableKey("atp-challenger")))
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "ITA,AUS", []string{"ITA", "AUS"}},
		{"spaces and empties", " Sinner , , Alcaraz ", []string{"Sinner", "Alcaraz"}},
		{"quoted", `"De Minaur, Alex",Paolini`, []string{"De Minaur, Alex", "Paolini"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	env := map[string]string{
		"LIVE_TENNIS_ENABLED":                   "true",
		"LIVE_TENNIS_NUM_WINDOWS":               "2",
		"LIVE_TENNIS_AUTO_SELECT_COUNTRY_CODES": "ITA, USA",
	}

	applied, err := ApplyOverrides(ctx, s, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KeyEnabled, KeyNumWindows, KeyAutoSelectCountries}, applied)

	enabled, _ := s.GetBoolean(ctx, KeyEnabled)
	assert.True(t, enabled)
	windows, _ := s.GetInt(ctx, KeyNumWindows)
	assert.Equal(t, 2, windows)
	countries, _ := s.GetStrv(ctx, KeyAutoSelectCountries)
	assert.Equal(t, []string{"ITA", "USA"}, countries)
}

func TestApplyOverrides_InvalidValue(t *testing.T) {
	s := NewMemoryStore()
	env := map[string]string{"LIVE_TENNIS_NUM_WINDOWS": "two"}

	_, err := ApplyOverrides(context.Background(), s, func(k string) string { return env[k] })
	assert.Error(t, err)
	windows, _ := s.GetInt(context.Background(), KeyNumWindows)
	assert.Equal(t, 1, windows)
}
