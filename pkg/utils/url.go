package utils

import "strings"

// MarkerMatcher returns a predicate reporting whether a request URL contains marker.
// An empty marker matches nothing.
func MarkerMatcher(marker string) func(string) bool {
	return func(rawURL string) bool {
		return marker != "" && strings.Contains(rawURL, marker)
	}
}
