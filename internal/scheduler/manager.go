// Package scheduler runs the console's periodic maintenance jobs on gocron.
package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	sessionrepo "github.com/OmarHalima/workforce-console/internal/session/repository"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
)

// Job is one registered periodic job.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the gocron scheduler and the registered jobs.
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
	log       *zap.Logger
}

// NewManager creates a manager with the standard job set. events may be nil.
func NewManager(sessions sessionrepo.Repository, tasks taskrepo.Repository, events activity.EventEmitter, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: s,
		jobs: []Job{
			NewSessionCleanupJob(sessions, log),
			NewTaskOverdueJob(tasks, events, log),
		},
		log: log,
	}, nil
}

// Start registers all jobs and starts the scheduler.
func (m *Manager) Start() {
	for _, job := range m.jobs {
		_, err := m.scheduler.NewJob(
			job.GetSchedule(),
			gocron.NewTask(job.Execute),
			gocron.WithName(job.GetName()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			m.log.Error("register job failed", zap.String("job", job.GetName()), zap.Error(err))
			continue
		}
		m.log.Info("job registered", zap.String("job", job.GetName()))
	}
	m.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.log.Warn("scheduler shutdown failed", zap.Error(err))
	}
}
