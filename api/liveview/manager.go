/* manager.go
 * Contains the interface of the window host driven by the live view updater
 */

package liveview

import (
	"context"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

// Manager owns the live view windows and the timers of the updater
type Manager interface {
	// SetFetchTimer runs fetch once after interval, replacing any pending fetch
	SetFetchTimer(interval time.Duration, fetch func())
	UnsetFetchTimer()

	LiveViewCount() int
	SetLiveViewCount(ctx context.Context, n int) error
	UpdateLiveViewContent(window int, match *shared.Match)
	// SetLiveViewContentsEmpty blanks every window from index from onwards
	SetLiveViewContentsEmpty(from int)
	HideLiveViews()
	DestroyLiveView()

	// SetCycleTimeout calls cycler every interval until it returns false or the timeout is destroyed
	SetCycleTimeout(interval time.Duration, cycler func() bool)
	DestroyCycleTimeout()
	// RemoveCycleTimeout and ContinueCycleTimeout are the values a cycler returns to stop or keep cycling
	RemoveCycleTimeout() bool
	ContinueCycleTimeout() bool
}
