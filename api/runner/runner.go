/* runner.go
 * Contains the selection and lifecycle policy. The runner consumes the engine's diff entries, tracks which tournaments
 * and matches are known, decides which matches are auto selected for the live view and deselects finished matches once
 * their grace period has passed
 */

package runner

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/homebackend/gnome-live-tennis-sub000/api/store"
	"github.com/sirupsen/logrus"
)

type Runner struct {
	mu       sync.Mutex
	settings store.Settings
	menu     Menu
	log      logrus.FieldLogger
	now      func() time.Time

	// titles is the sorted list of known tournament titles, the index of a title is its menu position
	titles            []string
	events            map[string]*shared.Event
	matches           map[string]*shared.Match
	selected          map[string]bool
	tournamentMatches map[string][]string
	manualDeselected  map[string]struct{}
	completionTimings map[string]time.Time

	lastRefresh time.Time
	updateOK    bool

	// pending holds the menu calls made under mu, flush delivers them in order once mu is released
	pending []func(Menu)
	menuMu  sync.Mutex
}

type Option func(*Runner)

// WithClock replaces the clock used for eviction deadlines
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func New(settings store.Settings, menu Menu, log logrus.FieldLogger, opts ...Option) *Runner {
	r := &Runner{
		settings:          settings,
		menu:              menu,
		log:               log.WithField("component", "runner"),
		now:               time.Now,
		events:            make(map[string]*shared.Event),
		matches:           make(map[string]*shared.Match),
		selected:          make(map[string]bool),
		tournamentMatches: make(map[string][]string),
		manualDeselected:  make(map[string]struct{}),
		completionTimings: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) UniqMatchID(event *shared.Event, match *shared.Match) string {
	return shared.UniqMatchID(event.ID, match.ID)
}

// notify queues a menu call. Must be called with mu held
func (r *Runner) notify(call func(Menu)) {
	r.pending = append(r.pending, call)
}

// flush delivers the queued menu calls in the order they were made. Must be called without mu held, menu sinks may
// block on network I/O
func (r *Runner) flush() {
	r.menuMu.Lock()
	defer r.menuMu.Unlock()

	r.mu.Lock()
	calls := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, call := range calls {
		call(r.menu)
	}
}

// region Tournaments

// Function to register a tournament and create its menu entry
// Preconditions: Receives a context and the event
// Postconditions: The event is known and rendered at its sorted position. Known events are ignored. Returns an error if
// the auto view list cannot be read
func (r *Runner) AddEvent(ctx context.Context, event *shared.Event) error {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.ID]; ok {
		return nil
	}
	r.log.WithField("event", event.ID).Infof("Adding tournament: %s", event.Title)

	autoEvents, err := r.settings.GetStrv(ctx, store.KeyAutoViewNewMatches)
	if err != nil {
		return fmt.Errorf("error reading auto view tournaments: %w", err)
	}

	position, _ := slices.BinarySearch(r.titles, event.Title)
	r.titles = slices.Insert(r.titles, position, event.Title)
	r.events[event.ID] = event

	text := event.Title
	if event.DisplayPrizeMoney != "" {
		text += " [" + event.DisplayPrizeMoney + "]"
	}
	isAuto := slices.Contains(autoEvents, event.ID)
	r.notify(func(m Menu) { m.AddEventItem(event, text, position, isAuto) })
	return nil
}

// Function to remove a tournament together with all of its matches
// Preconditions: Receives a context and the event
// Postconditions: The event leaves the auto view list, its matches leave the selection and every related menu entry is
// removed. Returns an error if the settings cannot be updated
func (r *Runner) RemoveEvent(ctx context.Context, event *shared.Event) error {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.WithField("event", event.ID).Infof("Removing tournament: %s", event.Title)

	_, known := r.events[event.ID]
	if known {
		if i := slices.Index(r.titles, event.Title); i >= 0 {
			r.titles = slices.Delete(r.titles, i, i+1)
		}
		delete(r.events, event.ID)
	}

	if _, err := r.filterSetting(ctx, store.KeyAutoViewNewMatches, func(id string) bool { return id != event.ID }); err != nil {
		return err
	}
	// tournaments without a title never got a menu entry
	if known {
		r.notify(func(m Menu) { m.RemoveEventItem(event) })
	}

	matchIDs, ok := r.tournamentMatches[event.ID]
	if !ok {
		return nil
	}
	delete(r.tournamentMatches, event.ID)
	for _, id := range matchIDs {
		r.forget(id)
		r.notify(func(m Menu) { m.RemoveMatchItem(id) })
	}
	_, err := r.filterSetting(ctx, store.KeySelectedMatches, func(id string) bool { return !slices.Contains(matchIDs, id) })
	return err
}

// Events returns the known tournaments ordered by title
func (r *Runner) Events() []*shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]*shared.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	slices.SortFunc(events, func(a, b *shared.Event) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return events
}

func (r *Runner) HasEvent(eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[eventID]
	return ok
}

// endregion

// region Matches

// Function to register a match, auto selecting it when the selection rules say so
// Preconditions: Receives a context, the owning event and the match
// Postconditions: The match is known and rendered with its selection state. A match that is already known is updated
// instead. Returns an error if the selection settings cannot be read or written
func (r *Runner) AddMatch(ctx context.Context, event *shared.Event, match *shared.Match) error {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	matchID := r.UniqMatchID(event, match)
	if _, ok := r.matches[matchID]; ok {
		return r.updateMatch(ctx, event, match)
	}

	log := r.log.WithFields(logrus.Fields{"event": event.ID, "match": matchID})
	log.Debugf("Adding match: %s", match.DisplayName)

	selection, err := r.settings.GetStrv(ctx, store.KeySelectedMatches)
	if err != nil {
		return fmt.Errorf("error reading selected matches: %w", err)
	}
	selected := slices.Contains(selection, matchID)
	if !selected && !match.HasFinished {
		auto, err := r.shouldAutoSelect(ctx, matchID, event, match)
		if err != nil {
			return err
		}
		if auto {
			log.Infof("Auto selected: %s", match.DisplayName)
			if err := r.settings.SetStrv(ctx, store.KeySelectedMatches, append(selection, matchID)); err != nil {
				return fmt.Errorf("error saving selected matches: %w", err)
			}
			selected = true
		}
	}

	r.matches[matchID] = match
	r.selected[matchID] = selected
	r.tournamentMatches[event.ID] = append(r.tournamentMatches[event.ID], matchID)
	r.notify(func(m Menu) { m.AddMatchItem(event, match, selected) })
	return nil
}

// Function to refresh a known match and run the eviction check
// Preconditions: Receives a context, the owning event and the match
// Postconditions: The menu entry is updated. A selected finished match gets an eviction deadline the first time it is
// seen, and is deselected by the first update after that deadline. Returns an error if the settings fail
func (r *Runner) UpdateMatch(ctx context.Context, event *shared.Event, match *shared.Match) error {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateMatch(ctx, event, match)
}

func (r *Runner) updateMatch(ctx context.Context, event *shared.Event, match *shared.Match) error {
	matchID := r.UniqMatchID(event, match)
	r.matches[matchID] = match
	r.notify(func(m Menu) { m.UpdateMatchItem(matchID, match) })

	if !r.selected[matchID] || !match.HasFinished {
		return nil
	}

	log := r.log.WithField("match", matchID)
	now := r.now()
	deadline, ok := r.completionTimings[matchID]
	if !ok {
		minutes, err := r.settings.GetInt(ctx, store.KeyKeepCompletedDuration)
		if err != nil {
			return fmt.Errorf("error reading keep completed duration: %w", err)
		}
		deadline = now.Add(time.Duration(minutes) * time.Minute)
		r.completionTimings[matchID] = deadline
		log.WithField("deadline", deadline.Format(time.RFC3339)).Info("Match finished, marking for deselection")
		return nil
	}
	if !now.After(deadline) {
		log.WithField("deadline", deadline.Format(time.RFC3339)).Debug("Match waiting for deselection")
		return nil
	}

	log.Info("Match deselected")
	delete(r.completionTimings, matchID)
	r.manualDeselected[matchID] = struct{}{}
	r.selected[matchID] = false
	r.notify(func(m Menu) { m.SetMatchSelection(matchID, false) })
	_, err := r.filterSetting(ctx, store.KeySelectedMatches, func(id string) bool { return id != matchID })
	return err
}

// Function to remove a match that is no longer reported by its source
// Preconditions: Receives a context, the owning event and the match
// Postconditions: The match leaves the selection, its manual deselection mark and eviction timer are cleared and its
// menu entry is removed
func (r *Runner) RemoveMatch(ctx context.Context, event *shared.Event, match *shared.Match) error {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	matchID := r.UniqMatchID(event, match)
	r.log.WithField("match", matchID).Debugf("Removing match: %s", match.DisplayName)

	r.forget(matchID)
	if ids, ok := r.tournamentMatches[event.ID]; ok {
		r.tournamentMatches[event.ID] = slices.DeleteFunc(ids, func(id string) bool { return id == matchID })
	}
	r.notify(func(m Menu) { m.RemoveMatchItem(matchID) })
	_, err := r.filterSetting(ctx, store.KeySelectedMatches, func(id string) bool { return id != matchID })
	return err
}

// forget drops every piece of state held for a match
func (r *Runner) forget(matchID string) {
	delete(r.matches, matchID)
	delete(r.selected, matchID)
	delete(r.manualDeselected, matchID)
	delete(r.completionTimings, matchID)
}

func (r *Runner) HasMatch(matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.matches[matchID]
	return ok
}

// Match returns a known match by composite id
func (r *Runner) Match(matchID string) (*shared.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID]
	return m, ok
}

// endregion

// region Selection

// Function to decide whether a newly added match is selected for the live view
// Preconditions: Receives a context, the composite match id, the event and the match
// Postconditions: Returns true if one of the rules selects the match. Finished and manually deselected matches are
// never selected
func (r *Runner) shouldAutoSelect(ctx context.Context, matchID string, event *shared.Event, match *shared.Match) (bool, error) {
	if match.HasFinished {
		return false, nil
	}
	if _, ok := r.manualDeselected[matchID]; ok {
		return false, nil
	}

	if match.IsLive {
		autoLive, err := r.settings.GetBoolean(ctx, store.KeyAutoSelectLiveMatches)
		if err != nil {
			return false, fmt.Errorf("error reading auto select live matches: %w", err)
		}
		if autoLive {
			return true, nil
		}
	}

	autoEvents, err := r.settings.GetStrv(ctx, store.KeyAutoViewNewMatches)
	if err != nil {
		return false, fmt.Errorf("error reading auto view tournaments: %w", err)
	}
	if slices.Contains(autoEvents, event.ID) {
		return true, nil
	}

	players := match.Players()

	countries, err := r.settings.GetStrv(ctx, store.KeyAutoSelectCountries)
	if err != nil {
		return false, fmt.Errorf("error reading auto select countries: %w", err)
	}
	if matchesCountry(players, countries) {
		return true, nil
	}

	names, err := r.settings.GetStrv(ctx, store.KeyAutoSelectNames)
	if err != nil {
		return false, fmt.Errorf("error reading auto select names: %w", err)
	}
	return matchesName(players, names), nil
}

func matchesCountry(players []shared.Player, countries []string) bool {
	for _, p := range players {
		if p.CountryCode == "" {
			continue
		}
		for _, c := range countries {
			if strings.EqualFold(strings.TrimSpace(c), p.CountryCode) {
				return true
			}
		}
	}
	return false
}

// matchesName reports whether a configured name equals a player's first or last name, or is part of the display name
func matchesName(players []shared.Player, names []string) bool {
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		for _, p := range players {
			if name == strings.ToLower(p.FirstName) ||
				name == strings.ToLower(p.LastName) ||
				strings.Contains(strings.ToLower(p.DisplayName), name) {
				return true
			}
		}
	}
	return false
}

// Function to flip the live view selection of a match on behalf of the user
// Preconditions: Receives a context and the composite match id
// Postconditions: The match is marked as manually handled so it is never auto selected again, its presence in the
// selection is flipped and the menu is updated. Returns the new selection state
func (r *Runner) ToggleMatchSelection(ctx context.Context, matchID string) (bool, error) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.manualDeselected[matchID] = struct{}{}
	selected, err := r.toggleSetting(ctx, store.KeySelectedMatches, matchID)
	if err != nil {
		return false, err
	}
	if !selected {
		delete(r.completionTimings, matchID)
	}
	if _, ok := r.matches[matchID]; ok {
		r.selected[matchID] = selected
		r.notify(func(m Menu) { m.SetMatchSelection(matchID, selected) })
	}
	return selected, nil
}

// ToggleAutoSelection flips whether new matches of the tournament are selected automatically. Returns the new state
func (r *Runner) ToggleAutoSelection(ctx context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toggleSetting(ctx, store.KeyAutoViewNewMatches, eventID)
}

func (r *Runner) IsMatchSelected(matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected[matchID]
}

// IsMatchWaitingDeselection reports whether a finished match is still inside its grace period
func (r *Runner) IsMatchWaitingDeselection(matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.completionTimings[matchID]
	return ok
}

// FilterAutoEvents keeps the auto view tournaments for which keep returns true
func (r *Runner) FilterAutoEvents(ctx context.Context, keep func(string) bool) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filterSetting(ctx, store.KeyAutoViewNewMatches, keep)
}

// FilterLiveViewMatches keeps the selected matches for which keep returns true
func (r *Runner) FilterLiveViewMatches(ctx context.Context, keep func(string) bool) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept, err := r.filterSetting(ctx, store.KeySelectedMatches, keep)
	if err != nil {
		return nil, err
	}
	for id, selected := range r.selected {
		if selected && !keep(id) {
			r.selected[id] = false
		}
	}
	return kept, nil
}

func (r *Runner) toggleSetting(ctx context.Context, key string, value string) (bool, error) {
	values, err := r.settings.GetStrv(ctx, key)
	if err != nil {
		return false, fmt.Errorf("error reading %s: %w", key, err)
	}
	stored := !slices.Contains(values, value)
	if stored {
		values = append(values, value)
	} else {
		values = slices.DeleteFunc(values, func(v string) bool { return v == value })
	}
	if err := r.settings.SetStrv(ctx, key, values); err != nil {
		return false, fmt.Errorf("error saving %s: %w", key, err)
	}
	return stored, nil
}

func (r *Runner) filterSetting(ctx context.Context, key string, keep func(string) bool) ([]string, error) {
	values, err := r.settings.GetStrv(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", key, err)
	}
	kept := slices.DeleteFunc(values, func(v string) bool { return !keep(v) })
	if err := r.settings.SetStrv(ctx, key, kept); err != nil {
		return nil, fmt.Errorf("error saving %s: %w", key, err)
	}
	return kept, nil
}

// endregion

// region Status

func (r *Runner) SetLastRefreshTime(t time.Time) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRefresh = t
	r.notify(func(m Menu) { m.SetLastRefreshTime(t) })
}

// LastRefreshTime returns the time of the last completed cycle, zero before the first one
func (r *Runner) LastRefreshTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRefresh
}

func (r *Runner) SetUpdateStatus(ok bool) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateOK = ok
	r.notify(func(m Menu) { m.SetUpdateStatus(ok) })
}

func (r *Runner) UpdateStatus() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateOK
}

// endregion
