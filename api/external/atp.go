/* atp.go
 * Contains the ATP and ATP Challenger live matches adapter
 */

package external

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

const (
	ATPTourURL       = "https://app.atptour.com/api/v2/gateway/livematches/website?scoringTournamentLevel=tour"
	ATPChallengerURL = "https://app.atptour.com/api/v2/gateway/livematches/website?scoringTournamentLevel=challenger"
	atpSiteURL       = "https://www.atptour.com"
)

type AtpFetcher struct {
	Tour   string
	URL    string
	client *Client
}

// NewAtpFetcher creates the adapter for shared.TourATP or shared.TourATPChallenger
func NewAtpFetcher(client *Client, tour string) *AtpFetcher {
	url := ATPTourURL
	if tour == shared.TourATPChallenger {
		url = ATPChallengerURL
	}
	return &AtpFetcher{Tour: tour, URL: url, client: client}
}

func (f *AtpFetcher) Cancel() {
	f.client.Abort()
}

// Function to fetch the live ATP tournaments and their matches
// Preconditions: Receives a context
// Postconditions: Returns the normalized events, or an error if the request fails or the payload has no Data
func (f *AtpFetcher) FetchData(ctx context.Context) ([]*shared.Event, error) {
	var response atpResponse
	if err := f.client.FetchJSON(ctx, Request{URL: f.URL}, &response); err != nil {
		return nil, fmt.Errorf("error fetching %s live matches: %w", f.Tour, err)
	}
	if response.Data == nil || response.Data.LiveMatchesTournamentsOrdered == nil {
		return nil, fmt.Errorf("%w: %s payload has no tournaments", ErrNoData, f.Tour)
	}
	return f.events(response.Data.LiveMatchesTournamentsOrdered), nil
}

func (f *AtpFetcher) events(raw []atpEvent) []*shared.Event {
	events := make([]*shared.Event, 0, len(raw))
	for _, e := range raw {
		id := e.EventID.String()
		event := shared.NewEvent(id, f.Tour)
		event.Year = e.EventYear.Value
		event.Name = e.EventTitle
		event.Title = e.EventTitle
		event.CountryCode = e.EventCountryCode
		event.Country = e.EventCountry
		event.Location = e.EventLocation
		event.City = e.EventCity
		event.StartDate = e.EventStartDate
		event.EndDate = e.EventEndDate
		event.Type = e.EventType
		event.DisplayType = atpDisplayType(f.Tour, e.EventType)
		event.EventTypeURL = atpEventTypeURL(f.Tour, e.EventType)
		event.IsLive = e.IsLive
		event.SinglesDrawSize = -1
		event.DoublesDrawSize = -1
		event.PrizeMoney = -1

		slug := slugify(e.EventTitle)
		event.URL = fmt.Sprintf("%s/en/tournaments/%s/%s/overview", atpSiteURL, slug, id)
		current := fmt.Sprintf("%s/en/scores/current/%s/%s", atpSiteURL, slug, id)
		event.MenuURLs = []shared.MenuURL{
			{Title: "Overview", URL: event.URL},
			{Title: "Results", URL: current + "/results"},
			{Title: "Draw", URL: current + "/draws"},
			{Title: "Schedule", URL: current + "/daily-schedule"},
			{Title: "Seeds", URL: current + "/top-seeds"},
		}

		for _, m := range e.LiveMatches {
			event.AddMatch(atpMatchFromRaw(event, m))
		}
		events = append(events, event)
	}
	return events
}

func atpMatchFromRaw(event *shared.Event, m atpMatch) *shared.Match {
	doubles := m.IsDoubles || strings.EqualFold(m.Type, "doubles")
	team1 := atpTeamFromRaw(m.PlayerTeam, doubles)
	team2 := atpTeamFromRaw(m.OpponentTeam, doubles)
	finished := m.MatchStatus == "F"

	server := shared.NoServer
	if m.ServerTeam.Valid && (m.ServerTeam.Value == 0 || m.ServerTeam.Value == 1) {
		server = m.ServerTeam.Value
	}

	stage := "live"
	if finished {
		stage = "archive"
	}

	match := &shared.Match{
		ID:              m.MatchID,
		IsDoubles:       doubles,
		RoundID:         m.RoundName,
		RoundName:       m.RoundName,
		CourtName:       m.CourtName,
		CourtID:         m.CourtID.String(),
		TotalTime:       m.MatchTimeTotal,
		StateReason:     m.MatchStateReasonMessage,
		Message:         m.ExtendedMessage,
		Status:          m.MatchStatus,
		Server:          server,
		WinnerID:        m.WinningPlayerID.String(),
		UmpireFirstName: m.UmpireFirstName,
		UmpireLastName:  m.UmpireLastName,
		LastUpdate:      m.LastUpdated,
		Team1:           team1,
		Team2:           team2,
		HasFinished:     finished,
		IsLive:          m.MatchStatus == "P",
		DisplayName:     team1.DisplayName + " vs " + team2.DisplayName,
		DisplayStatus:   ATPMatchStatus(m.MatchStatus),
		DisplayScore:    FormatSetScores(team1.SetScores, team2.SetScores),
		URL:             fmt.Sprintf("%s/en/scores/stats-centre/%s/%d/%s/%s", atpSiteURL, stage, event.Year, event.ID, m.MatchID),
	}
	if !doubles && len(team1.Players) > 0 && len(team2.Players) > 0 {
		p1, p2 := team1.Players[0], team2.Players[0]
		match.H2HURL = fmt.Sprintf("%s/en/players/atp-head-2-head/%s-vs-%s/%s/%s", atpSiteURL, p1.Slug, p2.Slug, p1.ID, p2.ID)
	}
	return match
}

func atpTeamFromRaw(t atpTeam, doubles bool) shared.Team {
	players := []shared.Player{atpPlayerFromRaw(t.Player)}
	if doubles && t.Partner != nil {
		players = append(players, atpPlayerFromRaw(*t.Partner))
	}
	scores := make([]shared.SetScore, 0, len(t.SetScores))
	for _, s := range t.SetScores {
		scores = append(scores, shared.SetScore{
			Score:    s.SetScore.Ptr(),
			TieBreak: s.TieBreakScore.Ptr(),
			Stats:    s.Stats,
		})
	}
	return shared.Team{
		Players:     players,
		EntryType:   t.EntryType.String(),
		Seed:        t.Seed.String(),
		GameScore:   t.GameScore.String(),
		SetScores:   scores,
		DisplayName: shared.TeamDisplayName(players),
	}
}

func atpPlayerFromRaw(p atpPlayer) shared.Player {
	slug := slugify(p.PlayerFirstName, p.PlayerLastName)
	return shared.Player{
		ID:          p.PlayerID,
		CountryCode: p.PlayerCountry,
		Country:     p.PlayerCountryName,
		FirstName:   p.PlayerFirstName,
		LastName:    p.PlayerLastName,
		DisplayName: strings.TrimSpace(p.PlayerFirstName + " " + p.PlayerLastName),
		HeadURL:     fmt.Sprintf("%s/-/media/alias/player-headshot/%s", atpSiteURL, p.PlayerID),
		Slug:        slug,
		URL:         fmt.Sprintf("%s/en/players/%s/%s/overview", atpSiteURL, slug, p.PlayerID),
	}
}

func atpDisplayType(tour string, eventType string) string {
	if tour == shared.TourATPChallenger && eventType == "CH" {
		return "ATP Challenger"
	}
	return "ATP " + eventType
}

func atpEventTypeURL(tour string, eventType string) string {
	if tour == shared.TourATP {
		if slices.Contains([]string{"1000", "500", "250"}, eventType) {
			return fmt.Sprintf("%s/assets/atpwt/images/tournament/badges/categorystamps_%s.png", atpSiteURL, eventType)
		}
		return ""
	}
	if eventType == "CH" {
		return atpSiteURL + "/assets/atpwt/images/tournament/badges/categorystamps_ch.png"
	}
	return ""
}
