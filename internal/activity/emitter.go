// Package activity publishes console activity events to the activity
// pipeline. Handlers emit asynchronously; cmd/worker consumes the Kafka topic
// and forwards events to Loki.
package activity

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/activity/domain"
)

// EventEmitter emits activity events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}
