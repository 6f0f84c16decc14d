/* test_helpers_test.go
 * Contains the fake window host and engine used by the updater tests
 */

package liveview

import (
	"context"
	"sync"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/homebackend/gnome-live-tennis-sub000/api/tennis"
)

// fakeManager records every call. Timers never fire on their own, tests drive the cycler with tick
type fakeManager struct {
	mu sync.Mutex

	fetchInterval   time.Duration
	fetchSets       int
	fetchUnsets     int
	windows         []*shared.Match
	emptyFrom       int
	hides           int
	destroyedViews  int
	destroyedCycles int
	cycler          func() bool
	cycleInterval   time.Duration
}

func (m *fakeManager) SetFetchTimer(interval time.Duration, _ func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchInterval = interval
	m.fetchSets++
}

func (m *fakeManager) UnsetFetchTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchUnsets++
}

func (m *fakeManager) LiveViewCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

func (m *fakeManager) SetLiveViewCount(_ context.Context, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = make([]*shared.Match, n)
	return nil
}

func (m *fakeManager) UpdateLiveViewContent(window int, match *shared.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[window] = match
}

func (m *fakeManager) SetLiveViewContentsEmpty(from int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emptyFrom = from
	for i := from; i < len(m.windows); i++ {
		m.windows[i] = nil
	}
}

func (m *fakeManager) HideLiveViews() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hides++
}

func (m *fakeManager) DestroyLiveView() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyedViews++
	m.windows = nil
}

func (m *fakeManager) SetCycleTimeout(interval time.Duration, cycler func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleInterval = interval
	m.cycler = cycler
}

func (m *fakeManager) DestroyCycleTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyedCycles++
	m.cycler = nil
}

func (m *fakeManager) RemoveCycleTimeout() bool   { return false }
func (m *fakeManager) ContinueCycleTimeout() bool { return true }

// tick fires the cycle timer once. Returns false when no cycle timer is set
func (m *fakeManager) tick() bool {
	m.mu.Lock()
	cycler := m.cycler
	m.mu.Unlock()
	if cycler == nil {
		return false
	}
	if !cycler() {
		m.mu.Lock()
		m.cycler = nil
		m.mu.Unlock()
	}
	return true
}

func (m *fakeManager) cycling() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycler != nil
}

// shown returns the match ids of the windows, "" for blank ones
func (m *fakeManager) shown() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.windows))
	for i, w := range m.windows {
		if w != nil {
			ids[i] = w.ID
		}
	}
	return ids
}

var _ Manager = (*fakeManager)(nil)

// fakeEngine streams canned responses
type fakeEngine struct {
	mu        sync.Mutex
	responses []tennis.Response
	result    tennis.QueryResult
	panicWith any
	queries   int
	disables  int

	// blocked is closed once a Query waits for release, release is closed by Disable
	blocked chan struct{}
	release chan struct{}
}

// blockUntilDisable makes the next Query wait until Disable is called
func (e *fakeEngine) blockUntilDisable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocked = make(chan struct{})
	e.release = make(chan struct{})
}

func (e *fakeEngine) set(responses []tennis.Response, result tennis.QueryResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses, e.result = responses, result
}

func (e *fakeEngine) Query(_ context.Context, handle func(tennis.Response)) tennis.QueryResult {
	e.mu.Lock()
	e.queries++
	responses, result, p := e.responses, e.result, e.panicWith
	blocked, release := e.blocked, e.release
	e.blocked = nil
	e.mu.Unlock()
	if p != nil {
		panic(p)
	}
	if blocked != nil {
		close(blocked)
		<-release
	}
	for _, r := range responses {
		handle(r)
	}
	return result
}

func (e *fakeEngine) Disable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disables++
	if e.release != nil {
		close(e.release)
		e.release = nil
	}
}

var allGood = tennis.QueryResult{AllGood: true, Sources: map[string]tennis.Status{"ATP": tennis.StatusUpdated}}

func newEvent(id string) *shared.Event {
	e := shared.NewEvent(id, shared.TourATP)
	e.Title = "Event " + id
	return e
}

func newMatch(e *shared.Event, id string, live bool, finished bool) *shared.Match {
	m := &shared.Match{ID: id, IsLive: live, HasFinished: finished, DisplayName: "A vs B"}
	e.AddMatch(m)
	return m
}

// added returns the responses of a first cycle: the tournament followed by all of its matches
func added(e *shared.Event) []tennis.Response {
	responses := []tennis.Response{{Type: tennis.AddTournament, Source: "ATP", Event: e}}
	for _, m := range e.Matches {
		responses = append(responses, tennis.Response{Type: tennis.AddMatch, Source: "ATP", Event: e, Match: m})
	}
	return responses
}

// updated returns the responses of a later cycle for the same tournament
func updated(e *shared.Event) []tennis.Response {
	responses := []tennis.Response{{Type: tennis.UpdateTournament, Source: "ATP", Event: e}}
	for _, m := range e.Matches {
		responses = append(responses, tennis.Response{Type: tennis.UpdateMatch, Source: "ATP", Event: e, Match: m})
	}
	return responses
}
