/* fetcher.go
 * Contains the Fetcher interface implemented by every source adapter
 */

package external

import (
	"context"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

// Fetcher fetches the current events of one upstream.
// A non-nil error marks a failed fetch. An empty slice with a nil error is a valid result with no events
type Fetcher interface {
	FetchData(ctx context.Context) ([]*shared.Event, error)
	// Cancel aborts any request in flight
	Cancel()
}

var (
	_ Fetcher = (*AtpFetcher)(nil)
	_ Fetcher = (*WtaFetcher)(nil)
	_ Fetcher = (*TennisTempleFetcher)(nil)
)
