/* live_tennis.go
 * Contains the reconciliation engine. Every source keeps its last good snapshot and an in-flight lock. A cycle fetches
 * all enabled sources concurrently and streams each source's diff to the caller as soon as that source is done
 */

package tennis

import (
	"context"
	"fmt"
	"sync"

	"github.com/homebackend/gnome-live-tennis-sub000/api/external"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/homebackend/gnome-live-tennis-sub000/api/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type sourceState struct {
	Source

	// inFlight is held for the whole fetch of this source
	inFlight sync.Mutex

	mu         sync.Mutex
	snapshot   shared.Snapshot
	generation uint64
	cancel     context.CancelFunc
}

type LiveTennis struct {
	settings store.Settings
	log      logrus.FieldLogger
	sources  []*sourceState
}

// sourceOutcome is what a source goroutine reports once its diff has been streamed
type sourceOutcome struct {
	name     string
	status   Status
	retained []*shared.Event
}

// NewLiveTennis creates the engine for the given sources.
// Preconditions: Receives the settings store (read for the enable-<source> flags), a logger and the sources
// Postconditions: Returns an engine with an empty snapshot per source
func NewLiveTennis(settings store.Settings, log logrus.FieldLogger, sources ...Source) *LiveTennis {
	lt := &LiveTennis{
		settings: settings,
		log:      log.WithField("component", "live-tennis"),
	}
	for _, s := range sources {
		lt.sources = append(lt.sources, &sourceState{Source: s, snapshot: shared.Snapshot{}})
	}
	return lt
}

// DefaultSources returns the ATP, ATP Challenger, WTA and tennistemple sources, each with its own client
func DefaultSources(opts external.ClientOptions) []Source {
	return []Source{
		{Name: shared.TourATP, SettingKey: "atp", Fetcher: external.NewAtpFetcher(external.NewClient("atp", opts), shared.TourATP)},
		{Name: shared.TourATPChallenger, SettingKey: "atp-challenger", Fetcher: external.NewAtpFetcher(external.NewClient("atp-challenger", opts), shared.TourATPChallenger)},
		{Name: shared.TourWTA, SettingKey: "wta", Fetcher: external.NewWtaFetcher(external.NewClient("wta", opts))},
		{Name: shared.TourTennisTemple, SettingKey: "tt", Fetcher: external.NewTennisTempleFetcher(external.NewClient("tt", opts))},
	}
}

// SourceNames returns the configured source names in order
func (lt *LiveTennis) SourceNames() []string {
	names := make([]string, 0, len(lt.sources))
	for _, s := range lt.sources {
		names = append(names, s.Name)
	}
	return names
}

// Snapshot returns the current snapshot of a source. The returned map must not be modified
func (lt *LiveTennis) Snapshot(name string) (shared.Snapshot, error) {
	for _, s := range lt.sources {
		if s.Name == name {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.snapshot, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// Query runs one cycle over every source.
// Preconditions: Receives a context and the handler for diff entries. handle is only ever called from the calling
// goroutine, one entry at a time, in the order each source produced them
// Postconditions: Returns once every source finished, with the overall success flag and per source status
func (lt *LiveTennis) Query(ctx context.Context, handle func(Response)) QueryResult {
	responses := make(chan Response)
	outcomes := make(chan sourceOutcome, len(lt.sources))

	var g errgroup.Group
	for _, s := range lt.sources {
		g.Go(func() error {
			outcomes <- lt.poll(ctx, s, responses)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(responses)
		close(outcomes)
	}()

	// keeps the source goroutines from blocking if handle panics
	defer func() {
		for range responses {
		}
	}()
	for r := range responses {
		handle(r)
	}

	result := QueryResult{AllGood: true, Sources: make(map[string]Status, len(lt.sources))}
	for o := range outcomes {
		result.Sources[o.name] = o.status
		result.Retained = append(result.Retained, o.retained...)
		if o.status == StatusFailed || o.status == StatusLocked {
			result.AllGood = false
		}
	}
	return result
}

// poll handles one source for one cycle and streams its diff into out
func (lt *LiveTennis) poll(ctx context.Context, s *sourceState, out chan<- Response) sourceOutcome {
	log := lt.log.WithField("source", s.Name)

	enabled, err := lt.settings.GetBoolean(ctx, store.EnableKey(s.SettingKey))
	if err != nil {
		log.WithError(err).Error("Error reading source enable flag")
		return lt.keep(s, StatusFailed)
	}
	if !enabled {
		log.Debug("Source not enabled")
		return lt.keep(s, StatusDisabled)
	}

	if !s.inFlight.TryLock() {
		log.Info("Previous fetch still running, skipping source")
		return lt.keep(s, StatusLocked)
	}
	defer s.inFlight.Unlock()

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	generation := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	events, err := s.Fetcher.FetchData(fetchCtx)

	s.mu.Lock()
	s.cancel = nil
	if generation != s.generation {
		s.mu.Unlock()
		log.Info("Discarding result of cancelled fetch")
		return lt.keep(s, StatusFailed)
	}
	if err != nil {
		s.mu.Unlock()
		log.WithError(err).Warn("Fetch received no data")
		return lt.keep(s, StatusFailed)
	}
	prev := s.snapshot
	next := shared.NewSnapshot(events)
	s.snapshot = next
	s.mu.Unlock()

	diff := Diff(prev, next)
	for _, r := range diff {
		r.Source = s.Name
		out <- r
	}
	log.WithFields(logrus.Fields{"events": len(next), "entries": len(diff)}).Debug("Source processed")
	return sourceOutcome{name: s.Name, status: StatusUpdated}
}

// keep reports a cycle without diff for the source, retaining its snapshot
func (lt *LiveTennis) keep(s *sourceState, status Status) sourceOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sourceOutcome{name: s.Name, status: status, retained: s.snapshot.Events()}
}

// Disable cancels every fetch in flight. Results of those fetches are discarded when they arrive.
// Safe to call any number of times
func (lt *LiveTennis) Disable() {
	for _, s := range lt.sources {
		s.mu.Lock()
		s.generation++
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
		s.Fetcher.Cancel()
	}
}
