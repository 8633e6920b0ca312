package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	activitydomain "github.com/OmarHalima/workforce-console/internal/activity/domain"
	"github.com/OmarHalima/workforce-console/internal/audit"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
)

const taskOverdueTimeout = 30 * time.Second

// TaskOverdueJob flags open tasks whose due date has passed.
type TaskOverdueJob struct {
	tasks  taskrepo.Repository
	events activity.EventEmitter
	log    *zap.Logger
}

// NewTaskOverdueJob creates the overdue sweep job. events may be nil.
func NewTaskOverdueJob(tasks taskrepo.Repository, events activity.EventEmitter, log *zap.Logger) *TaskOverdueJob {
	return &TaskOverdueJob{tasks: tasks, events: events, log: log}
}

func (j *TaskOverdueJob) GetName() string {
	return "task_overdue_sweep"
}

func (j *TaskOverdueJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(15 * time.Minute)
}

// Execute marks past-due open tasks as overdue.
func (j *TaskOverdueJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), taskOverdueTimeout)
	defer cancel()

	flagged, err := j.tasks.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error("overdue sweep failed", zap.Error(err))
		return
	}
	if flagged > 0 {
		j.log.Info("tasks flagged overdue", zap.Int64("count", flagged))
		activity.EmitAsync(j.events, j.log, &activitydomain.Event{
			ID:        uuid.New().String(),
			UserID:    audit.SentinelUserID,
			EventType: "task.overdue_sweep",
			Source:    "scheduler",
			Metadata:  fmt.Sprintf(`{"flagged":%d}`, flagged),
			CreatedAt: time.Now().UTC(),
		})
	}
}
