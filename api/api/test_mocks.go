/* test_mocks.go
 * Contains a mock engine and a builder for a fully wired API, used by the tests of this package and of the hosts
 */

package api

import (
	"context"
	"sync"

	"github.com/homebackend/gnome-live-tennis-sub000/api/liveview"
	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/homebackend/gnome-live-tennis-sub000/api/runner"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/homebackend/gnome-live-tennis-sub000/api/store"
	"github.com/homebackend/gnome-live-tennis-sub000/api/tennis"
)

// MockEngine streams the same responses on every query
type MockEngine struct {
	mu        sync.Mutex
	Responses []tennis.Response
	// Result is returned after the responses, AllGood by default
	Result tennis.QueryResult
	// PanicWith makes every query panic, for testing error paths
	PanicWith any

	Queries  int
	Disables int
}

// NewMockEngine returns an engine reporting every event as newly added
func NewMockEngine(events ...*shared.Event) *MockEngine {
	m := &MockEngine{Result: tennis.QueryResult{AllGood: true, Sources: map[string]tennis.Status{}}}
	for _, e := range events {
		m.Result.Sources[e.Tour] = tennis.StatusUpdated
		m.Responses = append(m.Responses, tennis.Response{Type: tennis.AddTournament, Source: e.Tour, Event: e})
		for _, match := range e.Matches {
			m.Responses = append(m.Responses, tennis.Response{Type: tennis.AddMatch, Source: e.Tour, Event: e, Match: match})
		}
	}
	return m
}

func (m *MockEngine) Query(_ context.Context, handle func(tennis.Response)) tennis.QueryResult {
	m.mu.Lock()
	m.Queries++
	responses, result, p := m.Responses, m.Result, m.PanicWith
	m.mu.Unlock()
	if p != nil {
		panic(p)
	}
	for _, r := range responses {
		handle(r)
	}
	return result
}

func (m *MockEngine) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disables++
}

// QueryCount returns the number of queries run so far
func (m *MockEngine) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Queries
}

var _ liveview.Engine = (*MockEngine)(nil)

// NewMockAPI wires an API over in-memory settings with the live view enabled, the given menu and a mock engine
// serving the events. No cycle has run yet
func NewMockAPI(menu runner.Menu, events ...*shared.Event) (*API, *MockEngine, *store.MemoryStore) {
	settings := store.NewMemoryStore()
	_ = settings.SetBoolean(context.Background(), store.KeyEnabled, true)

	log := logger.Discard()
	if menu == nil {
		menu = runner.LogMenu{Log: log}
	}
	engine := NewMockEngine(events...)
	r := runner.New(settings, menu, log)
	u := liveview.New(r, liveview.NewConsoleManager(log, 40), engine, settings, log)
	return NewAPI(r, u), engine, settings
}

// SampleEvents returns two tournaments: "Wimbledon" (id 540) with a live and an upcoming match, and "Queens"
// (id 311) with a finished match
func SampleEvents() []*shared.Event {
	wimbledon := shared.NewEvent("540", shared.TourATP)
	wimbledon.Title = "Wimbledon"
	wimbledon.AddMatch(sampleMatch("MS001", "Jannik", "Sinner", "ITA", "Carlos", "Alcaraz", "ESP", true, false))
	wimbledon.AddMatch(sampleMatch("MS002", "Taylor", "Fritz", "USA", "Alexander", "Zverev", "GER", false, false))

	queens := shared.NewEvent("311", shared.TourATP)
	queens.Title = "Queens"
	queens.AddMatch(sampleMatch("MS001", "Jack", "Draper", "GBR", "Tommy", "Paul", "USA", false, true))
	return []*shared.Event{wimbledon, queens}
}

func sampleMatch(id, first1, last1, country1, first2, last2, country2 string, live bool, finished bool) *shared.Match {
	p1 := shared.Player{FirstName: first1, LastName: last1, DisplayName: first1 + " " + last1, CountryCode: country1}
	p2 := shared.Player{FirstName: first2, LastName: last2, DisplayName: first2 + " " + last2, CountryCode: country2}
	status := "Upcoming"
	switch {
	case live:
		status = "Live"
	case finished:
		status = "Finished"
	}
	return &shared.Match{
		ID:            id,
		RoundName:     "Quarterfinal",
		Status:        status[:1],
		Server:        shared.NoServer,
		Team1:         shared.Team{Players: []shared.Player{p1}, DisplayName: last1},
		Team2:         shared.Team{Players: []shared.Player{p2}, DisplayName: last2},
		IsLive:        live,
		HasFinished:   finished,
		DisplayName:   last1 + " vs " + last2,
		DisplayStatus: status,
	}
}
