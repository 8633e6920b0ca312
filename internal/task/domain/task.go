package domain

import (
	"errors"
	"time"
)

// Task is a unit of tracked work inside a project.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string // empty when unassigned
	CreatedBy   string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	Overdue     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Open reports whether the task still counts against the project (not done).
func (t *Task) Open() bool {
	return t.Status != TaskStatusDone
}

// Validate validates the task for persistence.
func (t *Task) Validate() error {
	if t.ProjectID == "" {
		return errors.New("project is required")
	}
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	return nil
}
