package service

import "strings"

// Authorize reports whether the roles extracted from a token satisfy a route's
// required set. An empty required set admits any authenticated caller;
// otherwise at least one role must match (case-insensitive).
func Authorize(extracted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range extracted {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}
