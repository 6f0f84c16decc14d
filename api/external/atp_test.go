/* atp_test.go
 * Contains unit tests for the ATP adapter using httptest
 */

package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atpPayload = `{
  "Data": {
    "LiveMatchesTournamentsOrdered": [
      {
        "EventId": 580,
        "EventTitle": "Australian Open",
        "EventYear": 2025,
        "EventCountryCode": "AUS",
        "EventCountry": "Australia",
        "EventLocation": "Melbourne, Australia",
        "EventCity": "Melbourne",
        "EventStartDate": "2025-01-12",
        "EventEndDate": "2025-01-26",
        "EventType": "GS",
        "IsLive": true,
        "LiveMatches": [
          {
            "Type": "singles",
            "IsDoubles": false,
            "MatchId": "MS001",
            "MatchStatus": "P",
            "RoundName": "Final",
            "CourtName": "Rod Laver Arena",
            "CourtId": 1,
            "MatchTimeTotal": "02:15:00",
            "ServerTeam": 1,
            "WinningPlayerId": null,
            "PlayerTeam": {
              "Player": {"PlayerId": "S0AG", "PlayerFirstName": "Jannik", "PlayerLastName": "Sinner", "PlayerCountry": "ITA", "PlayerCountryName": "Italy"},
              "Seed": 1,
              "GameScore": "40",
              "SetScores": [{"SetScore": 6, "TieBreakScore": null}, {"SetScore": 7, "TieBreakScore": null}, {"SetScore": null}]
            },
            "OpponentTeam": {
              "Player": {"PlayerId": "Z355", "PlayerFirstName": "Alexander", "PlayerLastName": "Zverev", "PlayerCountry": "GER", "PlayerCountryName": "Germany"},
              "Seed": 2,
              "GameScore": "15",
              "SetScores": [{"SetScore": 4, "TieBreakScore": null}, {"SetScore": 6, "TieBreakScore": 3}, {"SetScore": null}]
            }
          },
          {
            "Type": "doubles",
            "IsDoubles": true,
            "MatchId": "MD002",
            "MatchStatus": "F",
            "RoundName": "Semifinal",
            "PlayerTeam": {
              "Player": {"PlayerId": "B1", "PlayerFirstName": "Simone", "PlayerLastName": "Bolelli", "PlayerCountry": "ITA"},
              "Partner": {"PlayerId": "V1", "PlayerFirstName": "Andrea", "PlayerLastName": "Vavassori", "PlayerCountry": "ITA"},
              "GameScore": 0,
              "SetScores": [{"SetScore": 6}, {"SetScore": 6}]
            },
            "OpponentTeam": {
              "Player": {"PlayerId": "H1", "PlayerFirstName": "Harri", "PlayerLastName": "Heliovaara", "PlayerCountry": "FIN"},
              "Partner": {"PlayerId": "P1", "PlayerFirstName": "Henry", "PlayerLastName": "Patten", "PlayerCountry": "GBR"},
              "GameScore": 0,
              "SetScores": [{"SetScore": 3}, {"SetScore": 4}]
            }
          }
        ]
      }
    ]
  }
}`

func newTestClient(name string) *Client {
	return NewClient(name, ClientOptions{Logger: logger.Discard()})
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// region AtpFetcher tests

func TestAtpFetcher_FetchData(t *testing.T) {
	server := serveJSON(t, atpPayload)
	f := NewAtpFetcher(newTestClient("atp"), shared.TourATP)
	f.URL = server.URL

	events, err := f.FetchData(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "580", e.ID)
	assert.Equal(t, 2025, e.Year)
	assert.Equal(t, "Australian Open", e.Title)
	assert.Equal(t, "ATP GS", e.DisplayType)
	assert.Equal(t, shared.TourATP, e.Tour)
	assert.True(t, e.IsLive)
	assert.Empty(t, e.EventTypeURL)
	assert.Equal(t, "https://www.atptour.com/en/tournaments/australian-open/580/overview", e.URL)
	require.Len(t, e.MenuURLs, 5)
	assert.Equal(t, "https://www.atptour.com/en/scores/current/australian-open/580/draws", e.MenuURLs[2].URL)
	require.Len(t, e.Matches, 2)

	singles := e.Match("MS001")
	require.NotNil(t, singles)
	assert.Same(t, e, singles.Event)
	assert.True(t, singles.IsLive)
	assert.False(t, singles.HasFinished)
	assert.Equal(t, "Live", singles.DisplayStatus)
	assert.Equal(t, "Sinner vs Zverev", singles.DisplayName)
	assert.Equal(t, "6-4, 7-6(3)", singles.DisplayScore)
	assert.Equal(t, 1, singles.Server)
	assert.Equal(t, "1", singles.CourtID)
	assert.Equal(t, "1", singles.Team1.Seed)
	assert.Equal(t, "40", singles.Team1.GameScore)
	assert.Equal(t, "ITA", singles.Team1.Players[0].CountryCode)
	assert.Equal(t, "https://www.atptour.com/-/media/alias/player-headshot/S0AG", singles.Team1.Players[0].HeadURL)
	assert.Equal(t, "https://www.atptour.com/en/players/atp-head-2-head/jannik-sinner-vs-alexander-zverev/S0AG/Z355", singles.H2HURL)
	assert.Equal(t, "https://www.atptour.com/en/scores/stats-centre/live/2025/580/MS001", singles.URL)

	doubles := e.Match("MD002")
	require.NotNil(t, doubles)
	assert.True(t, doubles.IsDoubles)
	assert.True(t, doubles.HasFinished)
	assert.Equal(t, "Finished", doubles.DisplayStatus)
	assert.Equal(t, "Bolelli/Vavassori vs Heliovaara/Patten", doubles.DisplayName)
	assert.Equal(t, "6-3, 6-4", doubles.DisplayScore)
	assert.Equal(t, shared.NoServer, doubles.Server)
	assert.Equal(t, "0", doubles.Team1.GameScore)
	assert.Empty(t, doubles.H2HURL)
	assert.Contains(t, doubles.URL, "/archive/")
}

func TestAtpFetcher_ChallengerDisplayType(t *testing.T) {
	payload := `{"Data": {"LiveMatchesTournamentsOrdered": [{"EventId": "9999", "EventTitle": "Bergamo", "EventType": "CH", "LiveMatches": []}]}}`
	server := serveJSON(t, payload)
	f := NewAtpFetcher(newTestClient("atp-challenger"), shared.TourATPChallenger)
	assert.Equal(t, ATPChallengerURL, f.URL)
	f.URL = server.URL

	events, err := f.FetchData(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ATP Challenger", events[0].DisplayType)
	assert.Contains(t, events[0].EventTypeURL, "categorystamps_ch.png")
	assert.Empty(t, events[0].Matches)
}

func TestAtpFetcher_EmptyListIsNotFailure(t *testing.T) {
	server := serveJSON(t, `{"Data": {"LiveMatchesTournamentsOrdered": []}}`)
	f := NewAtpFetcher(newTestClient("atp"), shared.TourATP)
	f.URL = server.URL

	events, err := f.FetchData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAtpFetcher_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noData bool
	}{
		{"null body", http.StatusOK, "null", true},
		{"empty body", http.StatusOK, "", true},
		{"missing data", http.StatusOK, `{"Other": 1}`, true},
		{"null tournaments", http.StatusOK, `{"Data": {"LiveMatchesTournamentsOrdered": null}}`, true},
		{"server error", http.StatusInternalServerError, "", false},
		{"malformed json", http.StatusOK, "{", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f := NewAtpFetcher(newTestClient("atp"), shared.TourATP)
			f.URL = server.URL
			events, err := f.FetchData(context.Background())
			require.Error(t, err)
			assert.Nil(t, events)
			assert.Equal(t, tt.noData, errors.Is(err, ErrNoData))
		})
	}
}

// endregion
