/* models.go
 * This file contains the normalized tennis data model shared between the source adapters, the reconciliation engine,
 * the selection runner and the live view scheduler
 */

package shared

import (
	"encoding/json"
	"sort"
	"strings"
)

// Tour names used as source identifiers
const (
	TourATP           = "ATP"
	TourATPChallenger = "ATP-Challenger"
	TourWTA           = "WTA"
	TourTennisTemple  = "TennisTemple"
)

// NoServer marks a match where neither team is serving
const NoServer = -1

type Player struct {
	ID          string `json:"id"`
	CountryCode string `json:"countryCode"`
	Country     string `json:"country"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	HeadURL     string `json:"headUrl,omitempty"`
	Slug        string `json:"slug,omitempty"`
	URL         string `json:"url,omitempty"`
}

// SetScore holds the games won in one set. A nil Score means the set has not been played
type SetScore struct {
	Score    *int            `json:"score,omitempty"`
	TieBreak *int            `json:"tieBreak,omitempty"`
	Stats    json.RawMessage `json:"stats,omitempty"`
}

type Team struct {
	Players     []Player   `json:"players"`
	EntryType   string     `json:"entryType,omitempty"`
	Seed        string     `json:"seed,omitempty"`
	GameScore   string     `json:"gameScore"`
	SetScores   []SetScore `json:"setScores"`
	DisplayName string     `json:"displayName"`
}

type MenuURL struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Match struct {
	ID              string `json:"id"`
	IsDoubles       bool   `json:"isDoubles"`
	RoundID         string `json:"roundId"`
	RoundName       string `json:"roundName"`
	CourtName       string `json:"courtName"`
	CourtID         string `json:"courtId"`
	TotalTime       string `json:"totalTime"`
	TimeStamp       string `json:"timeStamp,omitempty"`
	StateReason     string `json:"stateReason,omitempty"`
	Message         string `json:"message,omitempty"`
	Status          string `json:"status"`
	Server          int    `json:"server"`
	WinnerID        string `json:"winnerId,omitempty"`
	UmpireFirstName string `json:"umpireFirstName,omitempty"`
	UmpireLastName  string `json:"umpireLastName,omitempty"`
	LastUpdate      string `json:"lastUpdate,omitempty"`
	Team1           Team   `json:"team1"`
	Team2           Team   `json:"team2"`
	HasFinished     bool   `json:"hasFinished"`
	IsLive          bool   `json:"isLive"`
	DisplayName     string `json:"displayName"`
	DisplayStatus   string `json:"displayStatus"`
	DisplayScore    string `json:"displayScore"`
	URL             string `json:"url,omitempty"`
	H2HURL          string `json:"h2hUrl,omitempty"`

	// Event is the owning tournament. Not serialized to avoid a reference cycle
	Event *Event `json:"-"`
}

type Event struct {
	ID                 string    `json:"id"`
	Year               int       `json:"year"`
	Name               string    `json:"name"`
	Title              string    `json:"title"`
	CountryCode        string    `json:"countryCode"`
	Country            string    `json:"country"`
	Location           string    `json:"location"`
	City               string    `json:"city"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	Surface            string    `json:"surface,omitempty"`
	Indoor             bool      `json:"indoor"`
	Type               string    `json:"type"`
	DisplayType        string    `json:"displayType"`
	IsLive             bool      `json:"isLive"`
	Tour               string    `json:"tour"`
	SinglesDrawSize    int       `json:"singlesDrawSize,omitempty"`
	DoublesDrawSize    int       `json:"doublesDrawSize,omitempty"`
	PrizeMoney         int64     `json:"prizeMoney,omitempty"`
	PrizeMoneyCurrency string    `json:"prizeMoneyCurrency,omitempty"`
	DisplayPrizeMoney  string    `json:"displayPrizeMoney,omitempty"`
	Status             string    `json:"status,omitempty"`
	EventTypeURL       string    `json:"eventTypeUrl,omitempty"`
	URL                string    `json:"url,omitempty"`
	MenuURLs           []MenuURL `json:"menuUrls,omitempty"`

	Matches      []*Match          `json:"matches"`
	MatchMapping map[string]*Match `json:"-"`
}

// NewEvent returns an event with an initialised match mapping
func NewEvent(id string, tour string) *Event {
	return &Event{
		ID:           id,
		Tour:         tour,
		MatchMapping: make(map[string]*Match),
	}
}

// AddMatch attaches a match to the event, keeping Matches and MatchMapping in sync.
// A match with an id that is already present replaces the previous one in place
func (e *Event) AddMatch(m *Match) {
	if e.MatchMapping == nil {
		e.MatchMapping = make(map[string]*Match)
	}
	m.Event = e
	if old, ok := e.MatchMapping[m.ID]; ok {
		for i := range e.Matches {
			if e.Matches[i] == old {
				e.Matches[i] = m
				break
			}
		}
	} else {
		e.Matches = append(e.Matches, m)
	}
	e.MatchMapping[m.ID] = m
}

// Match returns the match with the given source id, or nil
func (e *Event) Match(id string) *Match {
	if e.MatchMapping == nil {
		return nil
	}
	return e.MatchMapping[id]
}

// Players returns every player taking part in the match
func (m *Match) Players() []Player {
	players := make([]Player, 0, len(m.Team1.Players)+len(m.Team2.Players))
	players = append(players, m.Team1.Players...)
	return append(players, m.Team2.Players...)
}

// UniqID returns the composite match identity used by the runner and the live view
func (m *Match) UniqID() string {
	if m.Event == nil {
		return m.ID
	}
	return UniqMatchID(m.Event.ID, m.ID)
}

// UniqMatchID builds the composite identity of a match inside an event
func UniqMatchID(eventID string, matchID string) string {
	return eventID + "-" + matchID
}

// TeamDisplayName joins the last names of the players, TBD when the team is unknown
func TeamDisplayName(players []Player) string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		name := p.LastName
		if name == "" {
			name = p.DisplayName
		}
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "TBD"
	}
	return strings.Join(names, "/")
}

// Snapshot is the last successfully fetched set of events of one source, keyed by event id
type Snapshot map[string]*Event

// NewSnapshot indexes the events by id
func NewSnapshot(events []*Event) Snapshot {
	s := make(Snapshot, len(events))
	for _, e := range events {
		s[e.ID] = e
	}
	return s
}

// Events returns the snapshot's events ordered by id
func (s Snapshot) Events() []*Event {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	events := make([]*Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, s[id])
	}
	return events
}
