// Package producer defines the interface for publishing activity events to Kafka.
package producer

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/activity/domain"
)

// Producer publishes activity events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single activity event. Implementations may block briefly;
	// call from a goroutine if needed.
	Emit(ctx context.Context, event *domain.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
