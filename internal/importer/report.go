package importer

import (
	"time"

	"job-connect-backend/internal/mapper"
)

// EntityReport holds the mapper counts for one entity batch.
type EntityReport struct {
	Entity string `json:"entity"`
	mapper.Stats
}

// SkippedEntity is an allow-listed name that was present but not imported.
type SkippedEntity struct {
	Entity string `json:"entity"`
	Reason string `json:"reason"`
}

// Report summarises one import.
type Report struct {
	Source     string          `json:"source"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Entities   []EntityReport  `json:"entities"`
	Skipped    []SkippedEntity `json:"skipped,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Duration is the wall time of the import.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Totals sums the counts of every entity batch.
func (r *Report) Totals() mapper.Stats {
	var total mapper.Stats
	for _, e := range r.Entities {
		total.Received += e.Received
		total.Saved += e.Saved
		total.Failed += e.Failed
		total.Deleted += e.Deleted
	}
	return total
}

func (r *Report) skip(entity, reason string) {
	r.Skipped = append(r.Skipped, SkippedEntity{Entity: entity, Reason: reason})
}
