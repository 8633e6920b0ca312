package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	activitydomain "github.com/OmarHalima/workforce-console/internal/activity/domain"
	sessiondomain "github.com/OmarHalima/workforce-console/internal/session/domain"
	taskdomain "github.com/OmarHalima/workforce-console/internal/task/domain"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions []*sessiondomain.Session
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	return nil, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, id string) error { return nil }

func (r *memSessionRepo) RevokeAllByUser(ctx context.Context, userID string) error { return nil }

func (r *memSessionRepo) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	return nil
}

func (r *memSessionRepo) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r *memSessionRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sessions[:0]
	var deleted int64
	for _, s := range r.sessions {
		if s.ExpiresAt.Before(cutoff) || s.RevokedAt != nil {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	return deleted, nil
}

type overdueTaskRepo struct {
	mu      sync.Mutex
	flagged int64
}

func (r *overdueTaskRepo) GetByID(ctx context.Context, id string) (*taskdomain.Task, error) {
	return nil, nil
}

func (r *overdueTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*taskdomain.Task, error) {
	return []*taskdomain.Task{}, nil
}

func (r *overdueTaskRepo) ListByAssignee(ctx context.Context, userID string) ([]*taskdomain.Task, error) {
	return []*taskdomain.Task{}, nil
}

func (r *overdueTaskRepo) Create(ctx context.Context, t *taskdomain.Task) error { return nil }

func (r *overdueTaskRepo) Update(ctx context.Context, t *taskdomain.Task) error { return nil }

func (r *overdueTaskRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *overdueTaskRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flagged, nil
}

type captureEmitter struct {
	mu     sync.Mutex
	events []*activitydomain.Event
}

func (e *captureEmitter) Emit(ctx context.Context, ev *activitydomain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *captureEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func TestSessionCleanupJob(t *testing.T) {
	now := time.Now().UTC()
	revoked := now.Add(-time.Hour)
	repo := &memSessionRepo{sessions: []*sessiondomain.Session{
		{ID: "s1", ExpiresAt: now.Add(-time.Minute)},
		{ID: "s2", ExpiresAt: now.Add(time.Hour)},
		{ID: "s3", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
	}}

	NewSessionCleanupJob(repo, zap.NewNop()).Execute()

	if len(repo.sessions) != 1 || repo.sessions[0].ID != "s2" {
		t.Fatalf("remaining sessions = %+v", repo.sessions)
	}
}

func TestTaskOverdueJobEmitsOnFlag(t *testing.T) {
	emitter := &captureEmitter{}
	repo := &overdueTaskRepo{flagged: 3}

	NewTaskOverdueJob(repo, emitter, zap.NewNop()).Execute()

	deadline := time.Now().Add(2 * time.Second)
	for emitter.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if emitter.count() != 1 {
		t.Fatalf("events = %d", emitter.count())
	}
}

func TestTaskOverdueJobQuietWhenNothingFlagged(t *testing.T) {
	emitter := &captureEmitter{}
	repo := &overdueTaskRepo{flagged: 0}

	NewTaskOverdueJob(repo, emitter, zap.NewNop()).Execute()

	time.Sleep(50 * time.Millisecond)
	if emitter.count() != 0 {
		t.Fatalf("events = %d", emitter.count())
	}
}
