/* diff.go
 * Contains the snapshot diff. Entries are produced in a fixed order: deletions of old events and of their removed
 * matches first, then additions and updates of the new events. Event ids are visited in sorted order and matches in
 * the order the source listed them
 */

package tennis

import "github.com/homebackend/gnome-live-tennis-sub000/api/shared"

// Diff compares two snapshots of one source.
// Preconditions: Receives the previous and the new snapshot. Either may be nil
// Postconditions: Returns the ordered diff entries. A deleted tournament implies the deletion of all its matches and
// gets no DeleteMatch entries
func Diff(prev shared.Snapshot, next shared.Snapshot) []Response {
	var out []Response

	for _, oldEvent := range prev.Events() {
		newEvent, ok := next[oldEvent.ID]
		if !ok {
			out = append(out, Response{Type: DeleteTournament, Event: oldEvent})
			continue
		}
		for _, m := range oldEvent.Matches {
			if newEvent.Match(m.ID) == nil {
				out = append(out, Response{Type: DeleteMatch, Event: oldEvent, Match: m})
			}
		}
	}

	for _, newEvent := range next.Events() {
		oldEvent, ok := prev[newEvent.ID]
		if !ok {
			out = append(out, Response{Type: AddTournament, Event: newEvent})
			for _, m := range newEvent.Matches {
				out = append(out, Response{Type: AddMatch, Event: newEvent, Match: m})
			}
			continue
		}
		out = append(out, Response{Type: UpdateTournament, Event: newEvent})
		for _, m := range newEvent.Matches {
			t := UpdateMatch
			if oldEvent.Match(m.ID) == nil {
				t = AddMatch
			}
			out = append(out, Response{Type: t, Event: newEvent, Match: m})
		}
	}

	return out
}
