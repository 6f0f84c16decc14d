/* models.go
 * This file contains the diff entry types streamed by the reconciliation engine and the result of a poll cycle
 */

package tennis

import (
	"fmt"

	"github.com/homebackend/gnome-live-tennis-sub000/api/external"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

type ResponseType int

const (
	DeleteTournament ResponseType = iota
	AddTournament
	UpdateTournament
	DeleteMatch
	AddMatch
	UpdateMatch
)

func (r ResponseType) String() string {
	switch r {
	case DeleteTournament:
		return "DeleteTournament"
	case AddTournament:
		return "AddTournament"
	case UpdateTournament:
		return "UpdateTournament"
	case DeleteMatch:
		return "DeleteMatch"
	case AddMatch:
		return "AddMatch"
	case UpdateMatch:
		return "UpdateMatch"
	}
	return fmt.Sprintf("ResponseType(%d)", int(r))
}

// Response is one diff entry. Match is nil for tournament entries
type Response struct {
	Type   ResponseType
	Source string
	Event  *shared.Event
	Match  *shared.Match
}

// Source is one upstream polled by the engine
type Source struct {
	Name string
	// SettingKey names the enable flag, e.g. "atp" for enable-atp
	SettingKey string
	Fetcher    external.Fetcher
}

// Status is the outcome of one source in one cycle
type Status int

const (
	StatusUpdated Status = iota
	StatusFailed
	StatusLocked
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusFailed:
		return "failed"
	case StatusLocked:
		return "locked"
	case StatusDisabled:
		return "disabled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// QueryResult is delivered after every diff entry of a cycle has been handled
type QueryResult struct {
	// AllGood is false when any source failed or was still busy with a previous fetch
	AllGood bool
	Sources map[string]Status
	// Retained holds the kept snapshot events of the sources that produced no diff this cycle
	Retained []*shared.Event
}
