/* card.go
 * Contains the plain text rendering of a match used by the console windows and the Discord host
 */

package liveview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

const (
	minColumns = 32
	pxPerCol   = 8
)

// Columns converts a window width in pixels into the number of text columns of a card
func Columns(widthPx int) int {
	return max(widthPx/pxPerCol, minColumns)
}

// Card renders a match as three lines: header, then one line per team with games per set and the current game score.
// The serving team is marked with '*'
func Card(match *shared.Match, columns int) string {
	columns = max(columns, minColumns)

	header := match.RoundName
	if match.Event != nil && match.Event.Title != "" {
		header = strings.TrimSpace(match.Event.Title + " " + header)
	}
	status := match.DisplayStatus
	if match.TotalTime != "" && match.IsLive {
		status += " " + match.TotalTime
	}

	var b strings.Builder
	b.WriteString(padBetween(header, status, columns))
	b.WriteByte('\n')
	b.WriteString(teamLine(match.Team1, match.Server == 0, columns))
	b.WriteByte('\n')
	b.WriteString(teamLine(match.Team2, match.Server == 1, columns))
	return b.String()
}

func teamLine(team shared.Team, serving bool, columns int) string {
	marker := "  "
	if serving {
		marker = "* "
	}
	var scores []string
	for _, s := range team.SetScores {
		if s.Score == nil {
			continue
		}
		scores = append(scores, fmt.Sprint(*s.Score))
	}
	if team.GameScore != "" {
		scores = append(scores, "| "+team.GameScore)
	}
	name := team.DisplayName
	if team.Seed != "" {
		name += " (" + team.Seed + ")"
	}
	return padBetween(marker+name, strings.Join(scores, " "), columns)
}

// padBetween puts left and right on one line of the given width, truncating left when both do not fit
func padBetween(left string, right string, columns int) string {
	room := columns - utf8.RuneCountInString(right) - 1
	if room < 1 {
		return right
	}
	if utf8.RuneCountInString(left) > room {
		left = string([]rune(left)[:room-1]) + "…"
	}
	gap := columns - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	return left + strings.Repeat(" ", max(gap, 1)) + right
}
