package domain

import (
	"context"
	"time"
)

// RawRequest is an undecoded message from the request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AnalysisRequest asks for one site to be analyzed.
type AnalysisRequest struct {
	ID   string
	Site Site
}

// RunSummary describes the last request a worker completed.
type RunSummary struct {
	RequestID   string         `json:"request_id"`
	Site        string         `json:"site"`
	CompletedAt time.Time      `json:"completed_at"`
	Empty       bool           `json:"empty"`
	Tables      int            `json:"tables"`
	Outcomes    map[Status]int `json:"outcomes"`
}

// CountOutcomes tallies outcomes by status.
func CountOutcomes(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
