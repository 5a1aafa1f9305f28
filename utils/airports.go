// utils/airports.go
package utils

import "strings"

// SplitRoute splits route text such as "MCO-SJU" into origin and destination.
// A route with no dash yields the whole text as origin.
func SplitRoute(route string) (origin, destination string) {
	parts := strings.SplitN(route, "-", 2)
	origin = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		destination = strings.TrimSpace(parts[1])
	}
	return origin, destination
}

