/* wta.go
 * Contains the WTA adapter. The tournaments running between yesterday and tomorrow are listed first, then the matches
 * of each tournament are fetched one request at a time
 */

package external

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

const (
	WTAAPIURL  = "https://api.wtatennis.com/tennis"
	wtaSiteURL = "https://www.wtatennis.com"
)

type WtaFetcher struct {
	BaseURL string
	client  *Client
	now     func() time.Time
}

func NewWtaFetcher(client *Client) *WtaFetcher {
	return &WtaFetcher{BaseURL: WTAAPIURL, client: client, now: time.Now}
}

func (f *WtaFetcher) Cancel() {
	f.client.Abort()
}

// dateRange returns yesterday and tomorrow as YYYY-MM-DD in UTC
func (f *WtaFetcher) dateRange() (string, string) {
	today := f.now().UTC()
	return today.AddDate(0, 0, -1).Format("2006-01-02"), today.AddDate(0, 0, 1).Format("2006-01-02")
}

func (f *WtaFetcher) eventsURL() string {
	from, to := f.dateRange()
	q := url.Values{}
	q.Set("page", "0")
	q.Set("pageSize", "20")
	q.Set("excludeLevels", "ITF")
	q.Set("from", from)
	q.Set("to", to)
	return fmt.Sprintf("%s/tournaments/?%s", f.BaseURL, q.Encode())
}

func (f *WtaFetcher) matchesURL(eventID string, year int) string {
	from, to := f.dateRange()
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	return fmt.Sprintf("%s/tournaments/%s/%d/matches?%s", f.BaseURL, url.PathEscape(eventID), year, q.Encode())
}

// Function to fetch the WTA tournaments and their matches
// Preconditions: Receives a context
// Postconditions: Returns the normalized events. Any failed request, including a single tournament's match list,
// fails the whole fetch
func (f *WtaFetcher) FetchData(ctx context.Context) ([]*shared.Event, error) {
	var response wtaEventsResponse
	if err := f.client.FetchJSON(ctx, Request{URL: f.eventsURL()}, &response); err != nil {
		return nil, fmt.Errorf("error fetching WTA tournaments: %w", err)
	}
	if response.Content == nil {
		return nil, fmt.Errorf("%w: WTA payload has no content", ErrNoData)
	}

	events := make([]*shared.Event, 0, len(*response.Content))
	for _, raw := range *response.Content {
		event := wtaEventFromRaw(raw)

		var matches wtaMatchesResponse
		if err := f.client.FetchJSON(ctx, Request{URL: f.matchesURL(event.ID, event.Year)}, &matches); err != nil {
			return nil, fmt.Errorf("error fetching WTA matches of %s: %w", event.ID, err)
		}
		if matches.Matches == nil {
			return nil, fmt.Errorf("%w: WTA matches of %s", ErrNoData, event.ID)
		}
		for _, m := range *matches.Matches {
			event.AddMatch(wtaMatchFromRaw(event, m))
		}
		events = append(events, event)
	}
	return events, nil
}

func wtaEventFromRaw(e wtaEvent) *shared.Event {
	id := e.TournamentGroup.ID.String()
	event := shared.NewEvent(id, shared.TourWTA)
	event.Year = e.Year.Value
	event.Name = e.TournamentGroup.Name
	event.Title = e.Title
	event.Country = e.Country
	event.Location = e.Country
	event.City = e.City
	event.StartDate = e.StartDate
	event.EndDate = e.EndDate
	event.Surface = e.Surface
	event.Indoor = e.InOutdoor.String() == "1" || strings.EqualFold(e.InOutdoor.String(), "I")
	event.Type = e.Level
	event.DisplayType = e.Level
	event.IsLive = e.Status == "inProgress"
	event.Status = e.Status
	event.SinglesDrawSize = e.SinglesDrawSize.Value
	event.DoublesDrawSize = e.DoublesDrawSize.Value
	event.PrizeMoneyCurrency = e.PrizeMoneyCurrency
	if e.PrizeMoney.Valid {
		event.PrizeMoney = int64(e.PrizeMoney.Value)
		event.DisplayPrizeMoney = strings.TrimSpace(e.PrizeMoneyCurrency + " " + CompactMoney(event.PrizeMoney))
	}
	event.EventTypeURL = wtaEventTypeURL(e.Level)
	event.URL = fmt.Sprintf("%s/tournaments/%s/%s/%d", wtaSiteURL, id, slugify(e.TournamentGroup.Name), event.Year)
	event.MenuURLs = []shared.MenuURL{{Title: "Overview", URL: event.URL}}
	return event
}

func wtaMatchFromRaw(event *shared.Event, m map[string]any) *shared.Match {
	drawMatchType := mapString(m, "DrawMatchType")
	doubles := drawMatchType != "S"
	team1 := wtaTeam(m, doubles, "A", "B")
	team2 := wtaTeam(m, doubles, "B", "A")
	state := mapString(m, "MatchState")

	server := shared.NoServer
	switch mapString(m, "Serve") {
	case "A":
		server = 0
	case "B":
		server = 1
	}

	score := mapString(m, "ScoreString")
	if score == "" {
		score = FormatSetScores(team1.SetScores, team2.SetScores)
	}

	roundID := mapString(m, "RoundID")
	match := &shared.Match{
		ID:            mapString(m, "MatchID"),
		IsDoubles:     doubles,
		RoundID:       roundID,
		RoundName:     WTARoundName(drawMatchType, mapString(m, "DrawLevelType"), roundID, state, event.SinglesDrawSize, event.DoublesDrawSize),
		CourtName:     mapString(m, "CourtName"),
		CourtID:       mapString(m, "CourtID"),
		TotalTime:     mapString(m, "MatchTimeTotal"),
		TimeStamp:     mapString(m, "MatchTimeStamp"),
		Message:       mapString(m, "FreeText"),
		Status:        state,
		Server:        server,
		Team1:         team1,
		Team2:         team2,
		HasFinished:   state == "F",
		IsLive:        state == "P",
		DisplayName:   team1.DisplayName + " vs " + team2.DisplayName,
		DisplayStatus: WTAMatchStatus(state),
		DisplayScore:  score,
		URL:           event.URL,
	}
	if !doubles {
		match.H2HURL = fmt.Sprintf("%s/head-to-head/%s/%s", wtaSiteURL, team1.Players[0].ID, team2.Players[0].ID)
	}
	return match
}

func wtaTeam(m map[string]any, doubles bool, team string, other string) shared.Team {
	players := []shared.Player{wtaPlayer(m, team)}
	if doubles {
		players = append(players, wtaPlayer(m, team+"2"))
	}

	scores := make([]shared.SetScore, 0, 5)
	for i := 1; i <= 5; i++ {
		own := mapInt(m, fmt.Sprintf("ScoreSet%d%s", i, team))
		opp := mapInt(m, fmt.Sprintf("ScoreSet%d%s", i, other))
		s := shared.SetScore{Score: own}
		// The tiebreak score is reported once per set and belongs to the loser of the set
		if own != nil && opp != nil && *own < *opp {
			s.TieBreak = mapInt(m, fmt.Sprintf("ScoreTbSet%d", i))
		}
		scores = append(scores, s)
	}

	return shared.Team{
		Players:     players,
		EntryType:   mapString(m, "EntryType"+team),
		Seed:        mapString(m, "Seed"+team),
		GameScore:   mapString(m, "Point"+team),
		SetScores:   scores,
		DisplayName: shared.TeamDisplayName(players),
	}
}

func wtaPlayer(m map[string]any, suffix string) shared.Player {
	first := mapString(m, "PlayerNameFirst"+suffix)
	if first == "" {
		first = "TBD"
	}
	last := mapString(m, "PlayerNameLast"+suffix)
	if last == "" {
		last = "TBD"
	}
	id := mapString(m, "PlayerID"+suffix)
	slug := slugify(first, last)
	p := shared.Player{
		ID:          id,
		CountryCode: mapString(m, "PlayerCountry"+suffix),
		Country:     mapString(m, "PlayerCountry"+suffix),
		FirstName:   first,
		LastName:    last,
		DisplayName: first + " " + last,
		Slug:        slug,
	}
	if first != "TBD" && last != "TBD" {
		p.URL = fmt.Sprintf("%s/players/%s/%s", wtaSiteURL, id, slug)
	}
	return p
}

func wtaEventTypeURL(level string) string {
	switch level {
	case "WTA 1000":
		return wtaSiteURL + "/resources/v7.8.3/i/elements/1000k-tag.svg"
	case "WTA 500":
		return wtaSiteURL + "/resources/v7.8.3/i/elements/500k-tag.svg"
	case "WTA 250":
		return wtaSiteURL + "/resources/v7.8.3/i/elements/250k-tag.svg"
	case "WTA 125":
		return wtaSiteURL + "/resources/v7.8.3/i/elements/125k-tag.svg"
	}
	return ""
}

// mapString reads a string or number field. Missing and null fields return ""
func mapString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// mapInt reads a numeric field, accepting numeric strings. Missing, empty and non-numeric fields return nil
func mapInt(m map[string]any, key string) *int {
	switch v := m[key].(type) {
	case float64:
		return intPtr(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return intPtr(n)
	}
	return nil
}
