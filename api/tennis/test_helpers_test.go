/* test_helpers_test.go
 * Contains fakes and builders shared by the engine tests
 */

package tennis

import (
	"context"
	"sync"

	"github.com/homebackend/gnome-live-tennis-sub000/api/external"
	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

// fakeFetcher returns canned events. When block is set FetchData waits for it to be closed
type fakeFetcher struct {
	mu      sync.Mutex
	events  []*shared.Event
	err     error
	calls   int
	cancels int

	started chan struct{}
	block   chan struct{}
	// ignoreCancel keeps waiting on block even when the context is cancelled
	ignoreCancel bool
}

func (f *fakeFetcher) set(events []*shared.Event, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events, f.err = events, err
}

func (f *fakeFetcher) FetchData(ctx context.Context) ([]*shared.Event, error) {
	f.mu.Lock()
	f.calls++
	events, err, block, started := f.events, f.err, f.block, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		if f.ignoreCancel {
			<-block
		} else {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return events, err
}

func (f *fakeFetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// event builds an event holding matches with the given ids
func event(id string, matchIDs ...string) *shared.Event {
	e := shared.NewEvent(id, shared.TourATP)
	e.Title = "Event " + id
	for _, mid := range matchIDs {
		e.AddMatch(&shared.Match{ID: mid})
	}
	return e
}

// collect runs a query and returns every entry it streamed
func collect(lt *LiveTennis) ([]Response, QueryResult) {
	var got []Response
	result := lt.Query(context.Background(), func(r Response) {
		got = append(got, r)
	})
	return got, result
}

type entry struct {
	Type    ResponseType
	EventID string
	MatchID string
}

func entries(responses []Response) []entry {
	out := make([]entry, 0, len(responses))
	for _, r := range responses {
		e := entry{Type: r.Type, EventID: r.Event.ID}
		if r.Match != nil {
			e.MatchID = r.Match.ID
		}
		out = append(out, e)
	}
	return out
}

func externalOptions() external.ClientOptions {
	return external.ClientOptions{Logger: logger.Discard()}
}
