package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity/domain"
)

// emitTimeout is the max time allowed for a single async emit. Used by
// EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before
// closing the producer, so in-flight async emits have time to complete. Must
// be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. Use from request handlers for fire-and-forget activity events.
//
// emitter and event may be nil; EmitAsync returns immediately without starting
// a goroutine. The goroutine uses context.Background() with emitTimeout so
// request cancellation does not abort an in-flight emit.
func EmitAsync(emitter EventEmitter, log *zap.Logger, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Warn("async activity emit failed", zap.Error(err))
		}
	}()
}
