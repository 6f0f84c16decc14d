/* utils.go
 * Utility functions used by main
 */

package main

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/time/rate"
)

// convertStrToBool converts a string of true or false into a boolean for comparisons
// Preconditions: Receives string containing either true or false (case insensitive)
// Postconditions: Returns boolean value or an error if the string is not true or false
func convertStrToBool(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string %q", str)
}

// newLimiter returns the limiter shared by every outbound request. The burst allows one request per whole rate unit
func newLimiter(requestsPerSecond float64) *rate.Limiter {
	burst := int(math.Max(1, math.Floor(requestsPerSecond)))
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
