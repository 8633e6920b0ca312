package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	sessionrepo "github.com/OmarHalima/workforce-console/internal/session/repository"
)

const sessionCleanupTimeout = 30 * time.Second

// SessionCleanupJob purges expired and revoked sessions.
type SessionCleanupJob struct {
	sessions sessionrepo.Repository
	log      *zap.Logger
}

// NewSessionCleanupJob creates the session cleanup job.
func NewSessionCleanupJob(sessions sessionrepo.Repository, log *zap.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, log: log}
}

func (j *SessionCleanupJob) GetName() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(1 * time.Hour)
}

// Execute deletes sessions that expired before now, plus revoked ones.
func (j *SessionCleanupJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), sessionCleanupTimeout)
	defer cancel()

	deleted, err := j.sessions.DeleteExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error("session cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("sessions purged", zap.Int64("count", deleted))
	}
}
