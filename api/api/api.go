/* api.go
 * This file contains the public methods used by the Discord and web hosts. Hosts should only go through this file,
 * not the runner or the updater directly
 */

package api

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/homebackend/gnome-live-tennis-sub000/api/liveview"
	"github.com/homebackend/gnome-live-tennis-sub000/api/runner"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// API provides the commands available to the hosts
type API struct {
	Runner  *runner.Runner
	Updater *liveview.Updater
}

func NewAPI(r *runner.Runner, u *liveview.Updater) *API {
	return &API{Runner: r, Updater: u}
}

// Matches returns every match of the last cycle ordered by tournament title, then by match id
func (a *API) Matches() []MatchInfo {
	matches := a.Updater.Matches()
	infos := make([]MatchInfo, 0, len(matches))
	for _, m := range matches {
		infos = append(infos, a.info(m))
	}
	slices.SortFunc(infos, func(x, y MatchInfo) int {
		return cmp.Or(strings.Compare(x.Event, y.Event), strings.Compare(x.ID, y.ID))
	})
	return infos
}

func (a *API) info(m *shared.Match) MatchInfo {
	id := m.UniqID()
	info := MatchInfo{
		ID:              id,
		Round:           m.RoundName,
		Name:            m.DisplayName,
		Status:          m.DisplayStatus,
		Score:           m.DisplayScore,
		Live:            m.IsLive,
		Finished:        m.HasFinished,
		Selected:        a.Runner.IsMatchSelected(id),
		PendingDeselect: a.Runner.IsMatchWaitingDeselection(id),
	}
	if m.Event != nil {
		info.EventID = m.Event.ID
		info.Event = m.Event.Title
		info.Tour = m.Event.Tour
	}
	return info
}

// Function to find a match of the last cycle from user input
// Preconditions: Receives the query, either a composite match id or (part of) the match's display name
// Postconditions: Returns the match, ErrNoMatch when nothing matches or ErrAmbiguous when the best candidates tie
func (a *API) FindMatch(query string) (*shared.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}
	matches := a.Updater.Matches()
	for _, m := range matches {
		if m.UniqID() == query {
			return m, nil
		}
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.DisplayName
	}
	i, err := bestCandidate(query, names)
	if err != nil {
		return nil, err
	}
	return matches[i], nil
}

// Function to flip the live view selection of a match
// Preconditions: Receives a context and the query passed to FindMatch
// Postconditions: Returns the match and its new selection state. The windows are recomputed
func (a *API) ToggleMatch(ctx context.Context, query string) (*shared.Match, bool, error) {
	m, err := a.FindMatch(query)
	if err != nil {
		return nil, false, err
	}
	selected, err := a.Runner.ToggleMatchSelection(ctx, m.UniqID())
	if err != nil {
		return nil, false, fmt.Errorf("error toggling selection of %s: %w", m.UniqID(), err)
	}
	if err := a.Updater.UpdateUI(ctx); err != nil {
		return m, selected, fmt.Errorf("error updating live views: %w", err)
	}
	return m, selected, nil
}

// FindEvent finds a known tournament by id or (part of) its title
func (a *API) FindEvent(query string) (*shared.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}
	events := a.Runner.Events()
	for _, e := range events {
		if e.ID == query {
			return e, nil
		}
	}

	titles := make([]string, len(events))
	for i, e := range events {
		titles[i] = e.Title
	}
	i, err := bestCandidate(query, titles)
	if err != nil {
		return nil, err
	}
	return events[i], nil
}

// ToggleAutoView flips whether new matches of a tournament are selected automatically. Returns the tournament and
// the new state
func (a *API) ToggleAutoView(ctx context.Context, query string) (*shared.Event, bool, error) {
	e, err := a.FindEvent(query)
	if err != nil {
		return nil, false, err
	}
	on, err := a.Runner.ToggleAutoSelection(ctx, e.ID)
	if err != nil {
		return nil, false, fmt.Errorf("error toggling auto view of %s: %w", e.ID, err)
	}
	return e, on, nil
}

// Refresh runs a cycle now and returns the resulting status
func (a *API) Refresh(ctx context.Context) liveview.Status {
	a.Updater.FetchMatchData(ctx)
	return a.Updater.Status()
}

func (a *API) Status() liveview.Status {
	return a.Updater.Status()
}

// Function to pick the candidate best matching the query
// Preconditions: Receives the query and the candidate names
// Postconditions: Returns the index of the candidate equal to the query ignoring case, or else of the closest fuzzy
// match. Returns ErrNoMatch without candidates and ErrAmbiguous when different candidates share the best rank
func bestCandidate(query string, candidates []string) (int, error) {
	lowerQuery := strings.ToLower(query)
	lookup := make(map[string][]int)
	var lowerCandidates []string
	for i, name := range candidates {
		lower := strings.ToLower(name)
		if _, ok := lookup[lower]; !ok {
			lowerCandidates = append(lowerCandidates, lower)
		}
		lookup[lower] = append(lookup[lower], i)
	}

	pick := func(target string) (int, error) {
		if indexes := lookup[target]; len(indexes) == 1 {
			return indexes[0], nil
		}
		return 0, fmt.Errorf("%w: %q", ErrAmbiguous, query)
	}

	if _, ok := lookup[lowerQuery]; ok {
		return pick(lowerQuery)
	}

	ranks := fuzzy.RankFind(lowerQuery, lowerCandidates)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoMatch, query)
	}
	sort.Sort(ranks)
	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		return 0, fmt.Errorf("%w: %q", ErrAmbiguous, query)
	}
	return pick(ranks[0].Target)
}
