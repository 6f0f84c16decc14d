/* menu.go
 * Contains the rendering sink driven by the runner. Every host (terminal log, Discord) implements Menu
 */

package runner

import (
	"time"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/sirupsen/logrus"
)

// Menu receives the add/update/remove calls for tournament and match entries
type Menu interface {
	AddEventItem(event *shared.Event, text string, position int, isAuto bool)
	RemoveEventItem(event *shared.Event)
	AddMatchItem(event *shared.Event, match *shared.Match, selected bool)
	UpdateMatchItem(matchID string, match *shared.Match)
	RemoveMatchItem(matchID string)
	SetMatchSelection(matchID string, selected bool)
	SetLastRefreshTime(t time.Time)
	SetUpdateStatus(ok bool)
}

// MultiMenu forwards every call to each of its menus in order
type MultiMenu []Menu

func (m MultiMenu) AddEventItem(event *shared.Event, text string, position int, isAuto bool) {
	for _, menu := range m {
		menu.AddEventItem(event, text, position, isAuto)
	}
}

func (m MultiMenu) RemoveEventItem(event *shared.Event) {
	for _, menu := range m {
		menu.RemoveEventItem(event)
	}
}

func (m MultiMenu) AddMatchItem(event *shared.Event, match *shared.Match, selected bool) {
	for _, menu := range m {
		menu.AddMatchItem(event, match, selected)
	}
}

func (m MultiMenu) UpdateMatchItem(matchID string, match *shared.Match) {
	for _, menu := range m {
		menu.UpdateMatchItem(matchID, match)
	}
}

func (m MultiMenu) RemoveMatchItem(matchID string) {
	for _, menu := range m {
		menu.RemoveMatchItem(matchID)
	}
}

func (m MultiMenu) SetMatchSelection(matchID string, selected bool) {
	for _, menu := range m {
		menu.SetMatchSelection(matchID, selected)
	}
}

func (m MultiMenu) SetLastRefreshTime(t time.Time) {
	for _, menu := range m {
		menu.SetLastRefreshTime(t)
	}
}

func (m MultiMenu) SetUpdateStatus(ok bool) {
	for _, menu := range m {
		menu.SetUpdateStatus(ok)
	}
}

// LogMenu renders the menu as log lines. Used by the terminal host
type LogMenu struct {
	Log logrus.FieldLogger
}

func (l LogMenu) AddEventItem(event *shared.Event, text string, position int, isAuto bool) {
	l.Log.WithFields(logrus.Fields{
		"event":    event.ID,
		"tour":     event.Tour,
		"position": position,
		"auto":     isAuto,
	}).Info("Tournament: " + text)
}

func (l LogMenu) RemoveEventItem(event *shared.Event) {
	l.Log.WithField("event", event.ID).Info("Tournament removed: " + event.Title)
}

func (l LogMenu) AddMatchItem(event *shared.Event, match *shared.Match, selected bool) {
	l.Log.WithFields(logrus.Fields{
		"event":    event.ID,
		"match":    match.ID,
		"selected": selected,
	}).Debug("Match: " + match.DisplayName)
}

func (l LogMenu) UpdateMatchItem(matchID string, match *shared.Match) {
	l.Log.WithFields(logrus.Fields{
		"match":  matchID,
		"status": match.DisplayStatus,
		"score":  match.DisplayScore,
	}).Debug("Match updated: " + match.DisplayName)
}

func (l LogMenu) RemoveMatchItem(matchID string) {
	l.Log.WithField("match", matchID).Debug("Match removed")
}

func (l LogMenu) SetMatchSelection(matchID string, selected bool) {
	l.Log.WithFields(logrus.Fields{"match": matchID, "selected": selected}).Info("Match selection changed")
}

func (l LogMenu) SetLastRefreshTime(t time.Time) {
	l.Log.WithField("time", t.Format("15:04:05")).Debug("Last refresh")
}

func (l LogMenu) SetUpdateStatus(ok bool) {
	if ok {
		l.Log.Debug("Update succeeded")
		return
	}
	l.Log.Warn("Update failed for at least one source")
}

var (
	_ Menu = MultiMenu(nil)
	_ Menu = LogMenu{}
)
