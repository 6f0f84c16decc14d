/* models.go
 * This file contain the structs and errors returned to api consumers
 */

package api

import "errors"

var (
	ErrNoMatch   = errors.New("nothing matches the query")
	ErrAmbiguous = errors.New("query matches more than one entry")
)

// MatchInfo is the flattened view of a match handed to the hosts
type MatchInfo struct {
	ID              string `json:"id"`
	EventID         string `json:"eventId"`
	Event           string `json:"event"`
	Tour            string `json:"tour"`
	Round           string `json:"round"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	Score           string `json:"score"`
	Live            bool   `json:"live"`
	Finished        bool   `json:"finished"`
	Selected        bool   `json:"selected"`
	PendingDeselect bool   `json:"pendingDeselect"`
}
