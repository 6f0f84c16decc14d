/* console_manager.go
 * Contains the terminal window host. Windows are kept in memory and logged as text cards whenever their content
 * changes
 */

package liveview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/sirupsen/logrus"
)

type ConsoleManager struct {
	mu      sync.Mutex
	log     logrus.FieldLogger
	columns int

	fetchTimer *time.Timer
	cycleStop  chan struct{}
	windows    []*shared.Match
	hidden     bool
}

func NewConsoleManager(log logrus.FieldLogger, columns int) *ConsoleManager {
	return &ConsoleManager{
		log:     log.WithField("component", "live-view"),
		columns: columns,
	}
}

func (c *ConsoleManager) SetFetchTimer(interval time.Duration, fetch func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchTimer != nil {
		c.fetchTimer.Stop()
	}
	c.fetchTimer = time.AfterFunc(interval, fetch)
}

func (c *ConsoleManager) UnsetFetchTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchTimer != nil {
		c.fetchTimer.Stop()
		c.fetchTimer = nil
	}
}

func (c *ConsoleManager) LiveViewCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

func (c *ConsoleManager) SetLiveViewCount(_ context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("invalid number of live views: %d", n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < len(c.windows) {
		c.windows = c.windows[:n]
	}
	for len(c.windows) < n {
		c.windows = append(c.windows, nil)
	}
	if c.hidden {
		c.log.Info("Showing live views")
		c.hidden = false
	}
	return nil
}

func (c *ConsoleManager) UpdateLiveViewContent(window int, match *shared.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if window < 0 || window >= len(c.windows) {
		c.log.WithField("window", window).Warn("Live view does not exist")
		return
	}
	c.windows[window] = match
	c.log.WithFields(logrus.Fields{
		"window": window,
		"match":  match.UniqID(),
	}).Info("\n" + Card(match, c.columns))
}

func (c *ConsoleManager) SetLiveViewContentsEmpty(from int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := max(from, 0); i < len(c.windows); i++ {
		c.windows[i] = nil
	}
}

func (c *ConsoleManager) HideLiveViews() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hidden {
		c.log.Info("Hiding live views")
		c.hidden = true
	}
}

func (c *ConsoleManager) DestroyLiveView() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = nil
	c.hidden = false
}

// SetCycleTimeout starts a ticker goroutine calling cycler. A previous cycle timeout is destroyed first
func (c *ConsoleManager) SetCycleTimeout(interval time.Duration, cycler func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyCycle()
	stop := make(chan struct{})
	c.cycleStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !cycler() {
					return
				}
			}
		}
	}()
}

// DestroyCycleTimeout signals the cycle goroutine to stop without waiting for it
func (c *ConsoleManager) DestroyCycleTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyCycle()
}

func (c *ConsoleManager) destroyCycle() {
	if c.cycleStop != nil {
		close(c.cycleStop)
		c.cycleStop = nil
	}
}

func (c *ConsoleManager) RemoveCycleTimeout() bool {
	return false
}

func (c *ConsoleManager) ContinueCycleTimeout() bool {
	return true
}

// Windows returns the content of every window, nil for blank windows
func (c *ConsoleManager) Windows() []*shared.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*shared.Match(nil), c.windows...)
}

func (c *ConsoleManager) Hidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hidden
}

var _ Manager = (*ConsoleManager)(nil)
