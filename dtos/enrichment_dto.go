package dtos

import "time"

type EnrichmentState string

const (
	EnrichmentStateQueued     EnrichmentState = "QUEUED"
	EnrichmentStateInProgress EnrichmentState = "IN_PROGRESS"
	EnrichmentStateCompleted  EnrichmentState = "COMPLETED"
	EnrichmentStateFailed     EnrichmentState = "FAILED"
)

// EnrichmentJob is the queryable progress of one asynchronous enrichment
// pass. It is a status cache, not the system of record - losing it on
// restart is acceptable.
type EnrichmentJob struct {
	ID                  string          `json:"id"`
	State               EnrichmentState `json:"status"`
	TotalComponents     int             `json:"totalComponents"`
	ProcessedComponents int             `json:"processedComponents"`
	ErrorMessage        *string         `json:"errorMessage,omitempty"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}
