package report

import "time"

// Result is the published outcome of one analysis request.
type Result struct {
	RequestID   string
	Site        string
	Tables      []Table
	ProcessedAt time.Time
}
