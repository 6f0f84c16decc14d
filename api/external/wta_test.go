/* wta_test.go
 * Contains unit tests for the WTA adapter using httptest
 */

package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wtaEventsPayload = `{
  "content": [
    {
      "year": 2025,
      "tournamentGroup": {"id": 901, "name": "Australian Open"},
      "title": "Australian Open",
      "country": "Australia",
      "city": "Melbourne",
      "startDate": "2025-01-12",
      "endDate": "2025-01-26",
      "surface": "Hard",
      "inOutdoor": "O",
      "level": "Grand Slam",
      "status": "inProgress",
      "singlesDrawSize": 128,
      "doublesDrawSize": 64,
      "prizeMoney": 96500000,
      "prizeMoneyCurrency": "AUD"
    }
  ]
}`

const wtaMatchesPayload = `{
  "matches": [
    {
      "MatchID": "LS001",
      "DrawMatchType": "S",
      "DrawLevelType": "M",
      "RoundID": "F",
      "MatchState": "P",
      "CourtName": "Rod Laver Arena",
      "CourtID": 1,
      "MatchTimeTotal": "01:20",
      "Serve": "B",
      "PlayerNameFirstA": "Aryna",
      "PlayerNameLastA": "Sabalenka",
      "PlayerIDA": 320760,
      "PlayerCountryA": "BLR",
      "SeedA": "1",
      "PointA": "30",
      "PlayerNameFirstB": "Madison",
      "PlayerNameLastB": "Keys",
      "PlayerIDB": 316956,
      "PlayerCountryB": "USA",
      "PointB": "40",
      "ScoreSet1A": 3, "ScoreSet1B": 6,
      "ScoreSet2A": 7, "ScoreSet2B": 6, "ScoreTbSet2": 5,
      "ScoreSet3A": "", "ScoreSet3B": "",
      "ScoreString": "3-6 7-6(5)"
    },
    {
      "MatchID": "LD002",
      "DrawMatchType": "D",
      "DrawLevelType": "M",
      "RoundID": "1",
      "MatchState": "U",
      "PlayerNameFirstA": "Sara",
      "PlayerNameLastA": "Errani",
      "PlayerNameFirstA2": "Jasmine",
      "PlayerNameLastA2": "Paolini",
      "PlayerCountryA": "ITA",
      "PlayerCountryA2": "ITA"
    }
  ]
}`

func newWtaServer(t *testing.T, eventsBody string, matchesBody string, matchesStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if strings.HasSuffix(r.URL.Path, "/matches") {
			assert.Equal(t, "/tournaments/901/2025/matches", r.URL.Path)
			assert.Equal(t, "2025-01-19", r.URL.Query().Get("from"))
			assert.Equal(t, "2025-01-21", r.URL.Query().Get("to"))
			w.WriteHeader(matchesStatus)
			w.Write([]byte(matchesBody))
			return
		}
		assert.Equal(t, "/tournaments/", r.URL.Path)
		assert.Equal(t, "ITF", r.URL.Query().Get("excludeLevels"))
		assert.Equal(t, "2025-01-19", r.URL.Query().Get("from"))
		w.Write([]byte(eventsBody))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestWtaFetcher(url string) *WtaFetcher {
	f := NewWtaFetcher(newTestClient("wta"))
	f.BaseURL = url
	f.now = func() time.Time { return time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC) }
	return f
}

// region WtaFetcher tests

func TestWtaFetcher_FetchData(t *testing.T) {
	server, requests := newWtaServer(t, wtaEventsPayload, wtaMatchesPayload, http.StatusOK)
	f := newTestWtaFetcher(server.URL)

	events, err := f.FetchData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "901", e.ID)
	assert.Equal(t, shared.TourWTA, e.Tour)
	assert.True(t, e.IsLive)
	assert.False(t, e.Indoor)
	assert.Equal(t, 128, e.SinglesDrawSize)
	assert.Equal(t, "AUD 96.5M", e.DisplayPrizeMoney)
	assert.Equal(t, "https://www.wtatennis.com/tournaments/901/australian-open/2025", e.URL)
	require.Len(t, e.Matches, 2)

	final := e.Match("LS001")
	require.NotNil(t, final)
	assert.Equal(t, "Final", final.RoundName)
	assert.Equal(t, "Live", final.DisplayStatus)
	assert.True(t, final.IsLive)
	assert.Equal(t, 1, final.Server)
	assert.Equal(t, "Sabalenka vs Keys", final.DisplayName)
	assert.Equal(t, "3-6 7-6(5)", final.DisplayScore)
	assert.Equal(t, "320760", final.Team1.Players[0].ID)
	assert.Equal(t, "https://www.wtatennis.com/head-to-head/320760/316956", final.H2HURL)
	assert.Equal(t, "https://www.wtatennis.com/players/320760/aryna-sabalenka", final.Team1.Players[0].URL)

	// the tiebreak belongs to the loser of the set
	require.Len(t, final.Team2.SetScores, 5)
	assert.Nil(t, final.Team1.SetScores[1].TieBreak)
	require.NotNil(t, final.Team2.SetScores[1].TieBreak)
	assert.Equal(t, 5, *final.Team2.SetScores[1].TieBreak)
	assert.Nil(t, final.Team1.SetScores[2].Score)

	doubles := e.Match("LD002")
	require.NotNil(t, doubles)
	assert.True(t, doubles.IsDoubles)
	assert.Equal(t, "Final", doubles.RoundName)
	assert.Equal(t, "Upcoming", doubles.DisplayStatus)
	assert.Equal(t, "Errani/Paolini vs TBD/TBD", doubles.DisplayName)
	assert.Equal(t, "TBD TBD", doubles.Team2.Players[0].DisplayName)
	assert.Empty(t, doubles.Team2.Players[0].URL)
	assert.Equal(t, shared.NoServer, doubles.Server)
	assert.Empty(t, doubles.H2HURL)
	assert.Equal(t, "", doubles.DisplayScore)
}

func TestWtaFetcher_EmptyContent(t *testing.T) {
	server, requests := newWtaServer(t, `{"content": []}`, "", http.StatusOK)
	f := newTestWtaFetcher(server.URL)

	events, err := f.FetchData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int32(1), requests.Load())
}

func TestWtaFetcher_MissingContentIsNoData(t *testing.T) {
	server, _ := newWtaServer(t, `{"pageInfo": {}}`, "", http.StatusOK)
	f := newTestWtaFetcher(server.URL)

	_, err := f.FetchData(context.Background())
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestWtaFetcher_EventFailureFailsFetch(t *testing.T) {
	server, _ := newWtaServer(t, wtaEventsPayload, "", http.StatusBadGateway)
	f := newTestWtaFetcher(server.URL)

	events, err := f.FetchData(context.Background())
	assert.Error(t, err)
	assert.Nil(t, events)
}

// endregion
