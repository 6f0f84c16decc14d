/* format.go
 * Contains the pure formatting helpers used by the source adapters: set scores, status labels, round names and prize
 * money
 */

package external

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
)

// Function to format the set scores of a match, e.g. "6-4, 7-6(3)"
// Preconditions: Receives the set scores of both teams, indexed by set number
// Postconditions: Returns the joined score. Sets missing a score for either team, or not yet started (0-0), are skipped.
// The tiebreak in brackets is the non-zero tiebreak of either team
func FormatSetScores(team1 []shared.SetScore, team2 []shared.SetScore) string {
	n := min(len(team1), len(team2))
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s1, s2 := team1[i], team2[i]
		if s1.Score == nil || s2.Score == nil {
			continue
		}
		if *s1.Score == 0 && *s2.Score == 0 {
			continue
		}
		part := fmt.Sprintf("%d-%d", *s1.Score, *s2.Score)
		switch {
		case s1.TieBreak != nil && *s1.TieBreak != 0:
			part += fmt.Sprintf("(%d)", *s1.TieBreak)
		case s2.TieBreak != nil && *s2.TieBreak != 0:
			part += fmt.Sprintf("(%d)", *s2.TieBreak)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// ATPMatchStatus maps an ATP status code to its display label
func ATPMatchStatus(code string) string {
	switch code {
	case "F":
		return "Finished"
	case "P":
		return "Live"
	case "C", "D", "M", "W":
		return "Paused"
	}
	return code
}

// WTAMatchStatus maps a WTA status code to its display label
func WTAMatchStatus(code string) string {
	switch code {
	case "U":
		return "Upcoming"
	case "F":
		return "Finished"
	case "P":
		return "Live"
	case "C":
		return "Paused"
	case "S":
		return "Suspended"
	}
	return code
}

// Function to derive the name of a WTA round
// Preconditions: Receives the draw match type (S or D), draw level (Q qualifying, M main), the raw round id, the match
// state and the singles and doubles draw sizes of the event
// Postconditions: Returns e.g. "Qualifying(S)", "Quarterfinal" or "Round of 32". Unknown levels return the raw round id
func WTARoundName(drawMatchType string, drawLevelType string, roundID string, matchState string, singlesDraw int, doublesDraw int) string {
	switch drawLevelType {
	case "Q":
		return fmt.Sprintf("Qualifying(%s)", drawMatchType)
	case "M":
	default:
		return roundID
	}

	switch roundID {
	case "Q":
		return "Quarterfinal"
	case "S":
		return "Semifinal"
	case "F":
		return "Final"
	}
	round, err := strconv.Atoi(roundID)
	if err != nil || round < 1 {
		return roundID
	}

	var roundOf int
	if matchState == "U" {
		roundOf = 1 << round
	} else {
		drawSize := singlesDraw
		if drawMatchType == "D" {
			drawSize = doublesDraw
		}
		actual := 2
		for drawSize > actual {
			actual *= 2
		}
		roundOf = actual >> (round - 1)
	}

	switch roundOf {
	case 8:
		return "Quarterfinal"
	case 4:
		return "Semifinal"
	case 2:
		return "Final"
	}
	return fmt.Sprintf("Round of %d", roundOf)
}

// CompactMoney formats an amount in short form, e.g. 1250000 -> "1.3M", 950 -> "950"
func CompactMoney(amount int64) string {
	abs := math.Abs(float64(amount))
	if abs < 1000 {
		return strconv.FormatInt(amount, 10)
	}
	units := []struct {
		size   float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if abs >= u.size {
			v := math.Round(float64(amount)/u.size*10) / 10
			s := strconv.FormatFloat(v, 'f', -1, 64)
			return s + u.suffix
		}
	}
	return strconv.FormatInt(amount, 10)
}

// slugify lower-cases a name and joins its words with dashes
func slugify(parts ...string) string {
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, w := range strings.Fields(strings.ToLower(p)) {
			words = append(words, w)
		}
	}
	return strings.Join(words, "-")
}

func intPtr(v int) *int {
	return &v
}
