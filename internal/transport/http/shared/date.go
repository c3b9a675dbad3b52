package shared

import (
	"strings"
	"time"
)

// ParseDate accepts RFC3339 or plain YYYY-MM-DD. Cycle boundaries and goal
// due dates arrive in either form depending on the client.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
