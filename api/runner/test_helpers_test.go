/* test_helpers_test.go
 * Contains the recording menu and builders used by the runner tests
 */

package runner

import (
	"sync"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

type eventItem struct {
	ID       string
	Text     string
	Position int
	Auto     bool
}

// recordingMenu remembers every call it receives
type recordingMenu struct {
	mu            sync.Mutex
	events        []eventItem
	removedEvents []string
	matches       map[string]bool
	updates       []string
	removed       []string
	selections    map[string]bool
	refreshed     time.Time
	status        *bool
}

func newRecordingMenu() *recordingMenu {
	return &recordingMenu{matches: make(map[string]bool), selections: make(map[string]bool)}
}

func (m *recordingMenu) AddEventItem(event *shared.Event, text string, position int, isAuto bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventItem{ID: event.ID, Text: text, Position: position, Auto: isAuto})
}

func (m *recordingMenu) RemoveEventItem(event *shared.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removedEvents = append(m.removedEvents, event.ID)
}

func (m *recordingMenu) AddMatchItem(event *shared.Event, match *shared.Match, selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[shared.UniqMatchID(event.ID, match.ID)] = selected
}

func (m *recordingMenu) UpdateMatchItem(matchID string, _ *shared.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, matchID)
}

func (m *recordingMenu) RemoveMatchItem(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, matchID)
	delete(m.matches, matchID)
}

func (m *recordingMenu) SetMatchSelection(matchID string, selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[matchID] = selected
}

func (m *recordingMenu) SetLastRefreshTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = t
}

func (m *recordingMenu) SetUpdateStatus(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = &ok
}

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newEvent(id string, title string) *shared.Event {
	e := shared.NewEvent(id, shared.TourATP)
	e.Title = title
	return e
}

func player(first string, last string, country string) shared.Player {
	return shared.Player{FirstName: first, LastName: last, DisplayName: first + " " + last, CountryCode: country}
}

// newMatch adds a singles match between p1 and p2 to the event
func newMatch(event *shared.Event, id string, p1 shared.Player, p2 shared.Player) *shared.Match {
	m := &shared.Match{
		ID:          id,
		Team1:       shared.Team{Players: []shared.Player{p1}},
		Team2:       shared.Team{Players: []shared.Player{p2}},
		DisplayName: p1.LastName + " vs " + p2.LastName,
	}
	event.AddMatch(m)
	return m
}

// withState returns a copy of the match with the given live and finished flags
func withState(m *shared.Match, live bool, finished bool) *shared.Match {
	c := *m
	c.IsLive = live
	c.HasFinished = finished
	return &c
}

// blockingMenu holds AddMatchItem until release is closed
type blockingMenu struct {
	*recordingMenu
	entered chan struct{}
	release chan struct{}
}

func (m *blockingMenu) AddMatchItem(event *shared.Event, match *shared.Match, selected bool) {
	close(m.entered)
	<-m.release
	m.recordingMenu.AddMatchItem(event, match, selected)
}
