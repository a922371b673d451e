package city

import (
	"fmt"
	"strings"
)

// Purchase records k steps of one measure bought for one category in a year.
type Purchase struct {
	Category string `json:"category"`
	Measure  string `json:"measure"`
	Count    int    `json:"count"`
	Cost     int    `json:"cost"`
}

func (p Purchase) String() string {
	return fmt.Sprintf("%s x%d (%s)", p.Measure, p.Count, p.Category)
}

// Describe renders purchases as a single human-readable line.
func Describe(purchases []Purchase) string {
	if len(purchases) == 0 {
		return "none"
	}
	parts := make([]string, len(purchases))
	for i, p := range purchases {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
