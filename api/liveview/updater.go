/* updater.go
 * Contains the live view scheduler. Every cycle runs the engine, feeds the diff through the runner, prunes stale
 * selections after a fully successful cycle and spreads the eligible matches over the live view windows, cycling
 * through them when there are more matches than windows
 */

package liveview

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/runner"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/homebackend/gnome-live-tennis-sub000/api/store"
	"github.com/homebackend/gnome-live-tennis-sub000/api/tennis"
	"github.com/sirupsen/logrus"
)

const defaultUpdateInterval = 15 * time.Second

// Engine runs one poll cycle over every source
type Engine interface {
	Query(ctx context.Context, handle func(tennis.Response)) tennis.QueryResult
	Disable()
}

var _ Engine = (*tennis.LiveTennis)(nil)

type Status struct {
	LastRefresh time.Time         `json:"lastRefresh"`
	OK          bool              `json:"ok"`
	Sources     map[string]string `json:"sources"`
	Hidden      bool              `json:"hidden"`
	Windows     []string          `json:"windows"`
	Matches     int               `json:"matches"`
}

type Updater struct {
	runner   *runner.Runner
	manager  Manager
	engine   Engine
	settings store.Settings
	log      logrus.FieldLogger
	now      func() time.Time

	// fetchMu serializes whole cycles, a manual refresh waits for the scheduled one
	fetchMu sync.Mutex

	// viewMu guards the window state below, it is shared with the cycle timer
	viewMu     sync.Mutex
	matches    []*shared.Match
	matchIndex int
	cycleGen   uint64
	windows    []string
	hidden     bool
	// stopped keeps a cycle still running across Stop from showing windows or arming the cycle timer
	stopped bool

	mu      sync.Mutex
	running bool
	sources map[string]string
}

func New(r *runner.Runner, manager Manager, engine Engine, settings store.Settings, log logrus.FieldLogger) *Updater {
	return &Updater{
		runner:   r,
		manager:  manager,
		engine:   engine,
		settings: settings,
		log:      log.WithField("component", "live-view-updater"),
		now:      time.Now,
		sources:  make(map[string]string),
	}
}

// Start schedules the first cycle immediately. Later cycles reschedule themselves
func (u *Updater) Start(ctx context.Context) {
	u.mu.Lock()
	u.running = true
	u.mu.Unlock()

	u.viewMu.Lock()
	u.stopped = false
	u.viewMu.Unlock()

	u.log.Info("Starting live view updates")
	u.manager.SetFetchTimer(0, func() { u.FetchMatchData(ctx) })
}

// Stop cancels every fetch in flight, the fetch timer and the cycle timer and removes the windows.
// Safe to call any number of times
func (u *Updater) Stop() {
	u.mu.Lock()
	wasRunning := u.running
	u.running = false
	u.mu.Unlock()

	u.engine.Disable()
	u.manager.UnsetFetchTimer()

	u.viewMu.Lock()
	u.stopped = true
	u.cycleGen++
	u.manager.DestroyCycleTimeout()
	u.manager.DestroyLiveView()
	u.windows = nil
	u.viewMu.Unlock()

	if wasRunning {
		u.log.Info("Stopped live view updates")
	}
}

func (u *Updater) isRunning() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.running
}

// Function to run one poll cycle
// Preconditions: Receives a context
// Postconditions: The runner and the windows reflect the latest data. The next cycle is scheduled when the updater is
// running, also when this cycle failed or panicked
func (u *Updater) FetchMatchData(ctx context.Context) {
	u.fetchMu.Lock()
	defer u.fetchMu.Unlock()
	defer u.schedule(ctx)
	defer func() {
		if p := recover(); p != nil {
			u.log.WithFields(logrus.Fields{
				"panic": fmt.Sprint(p),
				"stack": string(debug.Stack()),
			}).Error("Error during data fetch")
		}
	}()

	if err := u.fetch(ctx); err != nil {
		u.log.WithError(err).Error("Error during data fetch")
	}
}

func (u *Updater) fetch(ctx context.Context) error {
	u.log.Debug("Starting fetch of match data")

	eventIDs := make(map[string]struct{})
	matchIDs := make(map[string]struct{})
	var matches []*shared.Match

	result := u.engine.Query(ctx, func(r tennis.Response) {
		log := u.log.WithFields(logrus.Fields{"source": r.Source, "type": r.Type.String(), "event": r.Event.ID})
		var err error
		switch r.Type {
		case tennis.AddTournament, tennis.UpdateTournament:
			if r.Event.Title == "" {
				log.Info("Skipping tournament without title")
				return
			}
			eventIDs[r.Event.ID] = struct{}{}
			if r.Type == tennis.AddTournament {
				err = u.runner.AddEvent(ctx, r.Event)
			}
		case tennis.DeleteTournament:
			err = u.runner.RemoveEvent(ctx, r.Event)
		case tennis.AddMatch, tennis.UpdateMatch:
			if r.Type == tennis.AddMatch {
				err = u.runner.AddMatch(ctx, r.Event, r.Match)
			} else {
				err = u.runner.UpdateMatch(ctx, r.Event, r.Match)
			}
			matchIDs[u.runner.UniqMatchID(r.Event, r.Match)] = struct{}{}
			matches = append(matches, r.Match)
		case tennis.DeleteMatch:
			err = u.runner.RemoveMatch(ctx, r.Event, r.Match)
		}
		if err != nil {
			log.WithError(err).Warn("Error applying change")
		}
	})

	// sources without fresh data keep showing what they had
	for _, e := range result.Retained {
		eventIDs[e.ID] = struct{}{}
		for _, m := range e.Matches {
			matchIDs[u.runner.UniqMatchID(e, m)] = struct{}{}
			matches = append(matches, m)
		}
	}

	if result.AllGood {
		if _, err := u.runner.FilterAutoEvents(ctx, func(id string) bool { _, ok := eventIDs[id]; return ok }); err != nil {
			return fmt.Errorf("error pruning auto view tournaments: %w", err)
		}
		if _, err := u.runner.FilterLiveViewMatches(ctx, func(id string) bool { _, ok := matchIDs[id]; return ok }); err != nil {
			return fmt.Errorf("error pruning selected matches: %w", err)
		}
	}

	u.mu.Lock()
	u.sources = make(map[string]string, len(result.Sources))
	for name, status := range result.Sources {
		u.sources[name] = status.String()
	}
	u.mu.Unlock()

	u.viewMu.Lock()
	u.matches = matches
	u.viewMu.Unlock()

	viewErr := u.UpdateUI(ctx)
	u.runner.SetLastRefreshTime(u.now())
	u.runner.SetUpdateStatus(result.AllGood)
	u.log.WithFields(logrus.Fields{"matches": len(matches), "ok": result.AllGood}).Debug("Fetch complete")
	return viewErr
}

func (u *Updater) schedule(ctx context.Context) {
	if !u.isRunning() {
		return
	}
	interval := defaultUpdateInterval
	seconds, err := u.settings.GetInt(ctx, store.KeyUpdateInterval)
	if err != nil {
		u.log.WithError(err).Warn("Error reading update interval, using default")
	} else if seconds > 0 {
		interval = time.Duration(seconds) * time.Second
	}
	u.manager.SetFetchTimer(interval, func() { u.FetchMatchData(ctx) })
}

// UpdateUI recomputes the windows from the matches of the last cycle
func (u *Updater) UpdateUI(ctx context.Context) error {
	u.viewMu.Lock()
	defer u.viewMu.Unlock()
	return u.updateWindows(ctx)
}

// Function to spread the eligible matches over the windows. Must be called with viewMu held
// Preconditions: Receives a context
// Postconditions: Any running cycle timer is torn down. Windows are hidden, directly assigned or cycled. A stopped
// updater leaves the windows destroyed
func (u *Updater) updateWindows(ctx context.Context) error {
	u.cycleGen++
	u.manager.DestroyCycleTimeout()
	if u.stopped {
		u.log.Debug("Updater stopped, not updating live views")
		return nil
	}

	eligible, hide, err := u.evaluate(ctx)
	if err != nil {
		return err
	}
	if hide {
		u.hide()
		return nil
	}

	numWindows, err := u.settings.GetInt(ctx, store.KeyNumWindows)
	if err != nil {
		return fmt.Errorf("error reading number of windows: %w", err)
	}
	u.log.WithFields(logrus.Fields{"windows": numWindows, "eligible": len(eligible)}).Debug("Updating live views")
	if err := u.manager.SetLiveViewCount(ctx, numWindows); err != nil {
		return fmt.Errorf("error setting number of windows: %w", err)
	}
	u.hidden = false

	if len(eligible) <= numWindows {
		u.assign(eligible)
		return nil
	}

	duration, err := u.settings.GetInt(ctx, store.KeyMatchDisplayDuration)
	if err != nil {
		return fmt.Errorf("error reading match display duration: %w", err)
	}
	u.cycle(ctx)
	gen := u.cycleGen
	u.manager.SetCycleTimeout(time.Duration(duration)*time.Second, func() bool {
		u.viewMu.Lock()
		defer u.viewMu.Unlock()
		if gen != u.cycleGen {
			return u.manager.RemoveCycleTimeout()
		}
		return u.cycle(ctx)
	})
	return nil
}

// cycle shows the next run of consecutive eligible matches and advances the start index by one.
// Returns whether the cycle timer should keep going. Must be called with viewMu held
func (u *Updater) cycle(ctx context.Context) bool {
	eligible, hide, err := u.evaluate(ctx)
	if err != nil {
		u.log.WithError(err).Warn("Error evaluating live view matches")
		return u.manager.ContinueCycleTimeout()
	}
	if hide {
		u.hide()
		return u.manager.RemoveCycleTimeout()
	}

	count := u.manager.LiveViewCount()
	if len(eligible) <= count {
		u.assign(eligible)
		return u.manager.RemoveCycleTimeout()
	}

	u.matchIndex %= len(eligible)
	u.windows = make([]string, count)
	for i := 0; i < count; i++ {
		m := eligible[(u.matchIndex+i)%len(eligible)]
		u.manager.UpdateLiveViewContent(i, m)
		u.windows[i] = m.UniqID()
	}
	u.matchIndex = (u.matchIndex + 1) % len(eligible)
	return u.manager.ContinueCycleTimeout()
}

func (u *Updater) assign(eligible []*shared.Match) {
	u.windows = make([]string, 0, len(eligible))
	for i, m := range eligible {
		u.manager.UpdateLiveViewContent(i, m)
		u.windows = append(u.windows, m.UniqID())
	}
	u.manager.SetLiveViewContentsEmpty(len(eligible))
}

func (u *Updater) hide() {
	u.manager.HideLiveViews()
	u.windows = nil
	u.hidden = true
}

// Function to find the matches that may be shown and whether the windows should be hidden
// Preconditions: Receives a context. Must be called with viewMu held
// Postconditions: Returns the matches waiting for deselection plus the selected matches passing the live filter, and
// true when the feature is off or nothing eligible is live while auto hide is on
func (u *Updater) evaluate(ctx context.Context) ([]*shared.Match, bool, error) {
	selected, err := u.settings.GetStrv(ctx, store.KeySelectedMatches)
	if err != nil {
		return nil, false, fmt.Errorf("error reading selected matches: %w", err)
	}
	onlyLive, err := u.settings.GetBoolean(ctx, store.KeyOnlyShowLiveMatches)
	if err != nil {
		return nil, false, fmt.Errorf("error reading only show live matches: %w", err)
	}

	var eligible []*shared.Match
	for _, m := range u.matches {
		id := m.UniqID()
		if u.runner.IsMatchWaitingDeselection(id) || ((!onlyLive || m.IsLive) && slices.Contains(selected, id)) {
			eligible = append(eligible, m)
		}
	}

	enabled, err := u.settings.GetBoolean(ctx, store.KeyEnabled)
	if err != nil {
		return nil, false, fmt.Errorf("error reading enabled: %w", err)
	}
	if !enabled {
		return eligible, true, nil
	}
	autoHide, err := u.settings.GetBoolean(ctx, store.KeyAutoHideNoLiveMatches)
	if err != nil {
		return nil, false, fmt.Errorf("error reading auto hide: %w", err)
	}
	anyLive := slices.ContainsFunc(eligible, func(m *shared.Match) bool { return m.IsLive })
	return eligible, autoHide && !anyLive, nil
}

// Matches returns the matches of the last cycle
func (u *Updater) Matches() []*shared.Match {
	u.viewMu.Lock()
	defer u.viewMu.Unlock()
	return slices.Clone(u.matches)
}

func (u *Updater) Status() Status {
	u.viewMu.Lock()
	windows := slices.Clone(u.windows)
	hidden := u.hidden
	count := len(u.matches)
	u.viewMu.Unlock()

	u.mu.Lock()
	sources := make(map[string]string, len(u.sources))
	for k, v := range u.sources {
		sources[k] = v
	}
	u.mu.Unlock()

	return Status{
		LastRefresh: u.runner.LastRefreshTime(),
		OK:          u.runner.UpdateStatus(),
		Sources:     sources,
		Hidden:      hidden,
		Windows:     windows,
		Matches:     count,
	}
}
