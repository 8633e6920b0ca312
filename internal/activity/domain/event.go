package domain

import "time"

// Event is a console activity event published to the activity pipeline
// (Kafka, forwarded to Loki by cmd/worker). JSON field names are the wire
// format consumed by the worker.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
