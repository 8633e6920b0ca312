// Package assist provides the AI chat and task-enhancement panel backed by the
// Gemini API. Prompts carry a summary of the caller's visible workspace so the
// model answers in context. The service is optional; without an API key every
// operation returns ErrUnavailable.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	taskdomain "github.com/OmarHalima/workforce-console/internal/task/domain"
	"github.com/OmarHalima/workforce-console/internal/visibility"
)

// ErrUnavailable is returned when the assist panel is not configured.
var ErrUnavailable = errors.New("assist: not configured")

// Generator produces a completion for a prompt. Satisfied by the Gemini client
// wrapper; tests substitute a fake.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ProjectLister loads the project snapshot for the workspace summary.
type ProjectLister interface {
	List(ctx context.Context) ([]*projectdomain.Project, error)
}

// TaskLister loads a project's tasks for the workspace summary.
type TaskLister interface {
	ListByProject(ctx context.Context, projectID string) ([]*taskdomain.Task, error)
}

// Service answers chat questions and enhances task descriptions.
type Service struct {
	gen      Generator
	projects ProjectLister
	tasks    TaskLister
	log      *zap.Logger
}

// NewService returns an assist service. gen may be nil, in which case every
// operation returns ErrUnavailable.
func NewService(gen Generator, projects ProjectLister, tasks TaskLister, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, projects: projects, tasks: tasks, log: log}
}

// Available reports whether the panel is configured with a model client.
func (s *Service) Available() bool {
	return s != nil && s.gen != nil
}

// Chat answers a free-form question grounded in the actor's visible projects
// and their open tasks.
func (s *Service) Chat(ctx context.Context, actor visibility.Actor, message string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}
	summary, err := s.workspaceSummary(ctx, actor)
	if err != nil {
		return "", fmt.Errorf("assist: build workspace summary: %w", err)
	}
	answer, err := s.gen.GenerateText(ctx, BuildChatPrompt(summary, message))
	if err != nil {
		s.log.Warn("assist chat failed", zap.Error(err))
		return "", fmt.Errorf("assist: %w", err)
	}
	return answer, nil
}

// EnhanceTask rewrites a terse task title/description into a fuller one.
func (s *Service) EnhanceTask(ctx context.Context, title, description string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}
	answer, err := s.gen.GenerateText(ctx, BuildEnhancePrompt(title, description))
	if err != nil {
		s.log.Warn("assist enhance failed", zap.Error(err))
		return "", fmt.Errorf("assist: %w", err)
	}
	return answer, nil
}

// workspaceSummary renders the actor's visible projects and open tasks as a
// compact plain-text block for prompt grounding.
func (s *Service) workspaceSummary(ctx context.Context, actor visibility.Actor) (string, error) {
	all, err := s.projects.List(ctx)
	if err != nil {
		return "", err
	}
	res := visibility.Resolve(actor, nil, all)

	var b strings.Builder
	for _, p := range res.VisibleProjects {
		fmt.Fprintf(&b, "Project %q (status %s)\n", p.Name, p.Status)
		tasks, err := s.tasks.ListByProject(ctx, p.ID)
		if err != nil {
			return "", err
		}
		for _, t := range tasks {
			if !t.Open() {
				continue
			}
			fmt.Fprintf(&b, "  - [%s/%s] %s\n", t.Status, t.Priority, t.Title)
		}
	}
	if b.Len() == 0 {
		return "No visible projects.", nil
	}
	return b.String(), nil
}

// BuildChatPrompt assembles the chat prompt from a workspace summary and the
// user's message. Exported for tests.
func BuildChatPrompt(workspaceSummary, message string) string {
	var b strings.Builder
	b.WriteString("You are a workforce management assistant. Answer using the workspace context below. ")
	b.WriteString("Be concise; say so when the context does not contain the answer.\n\n")
	b.WriteString("Workspace:\n")
	b.WriteString(workspaceSummary)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(message))
	return b.String()
}

// BuildEnhancePrompt assembles the task-enhancement prompt. Exported for tests.
func BuildEnhancePrompt(title, description string) string {
	var b strings.Builder
	b.WriteString("Rewrite the following task into a clear, actionable description ")
	b.WriteString("with acceptance criteria. Keep it short and return plain text only.\n\n")
	b.WriteString("Title: ")
	b.WriteString(strings.TrimSpace(title))
	if strings.TrimSpace(description) != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(strings.TrimSpace(description))
	}
	return b.String()
}

// GeminiGenerator is the production Generator over the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator. Returns nil when no
// API key is configured so the caller can wire an unavailable service.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, nil
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("assist: create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateText runs a single-turn completion.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}
