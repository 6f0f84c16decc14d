/* models.go
 * This file contains the raw payload shapes returned by the upstream APIs, before they are mapped into the shared model
 */

package external

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// flexString accepts a JSON string, number, boolean or null
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

func (f flexString) String() string {
	return string(f)
}

// flexInt accepts a JSON number, a numeric string or null. Anything unparsable is treated as absent
type flexInt struct {
	Value int
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*f = flexInt{}
		return nil
	}
	*f = flexInt{Value: int(n), Valid: true}
	return nil
}

func (f flexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	return intPtr(f.Value)
}

// region ATP

type atpResponse struct {
	Data *struct {
		LiveMatchesTournamentsOrdered []atpEvent `json:"LiveMatchesTournamentsOrdered"`
	} `json:"Data"`
}

type atpEvent struct {
	EventID          flexString `json:"EventId"`
	EventTitle       string     `json:"EventTitle"`
	EventYear        flexInt    `json:"EventYear"`
	EventCountryCode string     `json:"EventCountryCode"`
	EventCountry     string     `json:"EventCountry"`
	EventLocation    string     `json:"EventLocation"`
	EventCity        string     `json:"EventCity"`
	EventStartDate   string     `json:"EventStartDate"`
	EventEndDate     string     `json:"EventEndDate"`
	EventType        string     `json:"EventType"`
	IsLive           bool       `json:"IsLive"`
	LiveMatches      []atpMatch `json:"LiveMatches"`
}

type atpMatch struct {
	Type                    string     `json:"Type"`
	IsDoubles               bool       `json:"IsDoubles"`
	MatchID                 string     `json:"MatchId"`
	MatchStatus             string     `json:"MatchStatus"`
	RoundName               string     `json:"RoundName"`
	CourtName               string     `json:"CourtName"`
	CourtID                 flexString `json:"CourtId"`
	MatchTimeTotal          string     `json:"MatchTimeTotal"`
	MatchStateReasonMessage string     `json:"MatchStateReasonMessage"`
	ExtendedMessage         string     `json:"ExtendedMessage"`
	ServerTeam              flexInt    `json:"ServerTeam"`
	WinningPlayerID         flexString `json:"WinningPlayerId"`
	UmpireFirstName         string     `json:"UmpireFirstName"`
	UmpireLastName          string     `json:"UmpireLastName"`
	LastUpdated             string     `json:"LastUpdated"`
	PlayerTeam              atpTeam    `json:"PlayerTeam"`
	OpponentTeam            atpTeam    `json:"OpponentTeam"`
}

type atpTeam struct {
	Player    atpPlayer     `json:"Player"`
	Partner   *atpPlayer    `json:"Partner"`
	EntryType flexString    `json:"EntryType"`
	Seed      flexString    `json:"Seed"`
	GameScore flexString    `json:"GameScore"`
	SetScores []atpSetScore `json:"SetScores"`
}

type atpPlayer struct {
	PlayerID          string `json:"PlayerId"`
	PlayerFirstName   string `json:"PlayerFirstName"`
	PlayerLastName    string `json:"PlayerLastName"`
	PlayerCountry     string `json:"PlayerCountry"`
	PlayerCountryName string `json:"PlayerCountryName"`
}

type atpSetScore struct {
	SetScore      flexInt         `json:"SetScore"`
	TieBreakScore flexInt         `json:"TieBreakScore"`
	Stats         json.RawMessage `json:"Stats"`
}

// endregion

// region WTA

type wtaEventsResponse struct {
	Content *[]wtaEvent `json:"content"`
}

type wtaEvent struct {
	Year            flexInt `json:"year"`
	TournamentGroup struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"tournamentGroup"`
	Title              string     `json:"title"`
	Country            string     `json:"country"`
	City               string     `json:"city"`
	StartDate          string     `json:"startDate"`
	EndDate            string     `json:"endDate"`
	Surface            string     `json:"surface"`
	InOutdoor          flexString `json:"inOutdoor"`
	Level              string     `json:"level"`
	Status             string     `json:"status"`
	SinglesDrawSize    flexInt    `json:"singlesDrawSize"`
	DoublesDrawSize    flexInt    `json:"doublesDrawSize"`
	PrizeMoney         flexInt    `json:"prizeMoney"`
	PrizeMoneyCurrency string     `json:"prizeMoneyCurrency"`
}

// WTA matches use team suffixed keys (PlayerNameFirstA, ScoreSet1B, ...), so they are kept as generic maps
type wtaMatchesResponse struct {
	Matches *[]map[string]any `json:"matches"`
}

// endregion
