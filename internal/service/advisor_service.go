package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandipsawant10/smart-task-manager/internal/ai"
	dom "github.com/sandipsawant10/smart-task-manager/internal/domain"
)

var (
	ErrNoTasksGenerated   = errors.New("no tasks were generated")
	ErrNoTasksForFeedback = errors.New("no tasks found for feedback")
	ErrBadSuggestion      = errors.New("advisor returned an unusable suggestion")
)

// AdvisorService turns free-text model output into validated task data.
// The model is non-authoritative: everything it returns is checked before
// it is persisted or handed to a client.
type AdvisorService struct {
	completer ai.Completer
	tasks     *TaskService
}

// NewAdvisorService returns a new AdvisorService.
func NewAdvisorService(completer ai.Completer, tasks *TaskService) *AdvisorService {
	return &AdvisorService{completer: completer, tasks: tasks}
}

// GenerateTasks decomposes a goal into task titles and persists them at
// medium priority on behalf of the caller. The whole operation fails if
// parsing yields nothing, even when the advisory call itself succeeded.
func (s *AdvisorService) GenerateTasks(ctx context.Context, userID uuid.UUID, goal string) ([]dom.Task, error) {
	raw, err := s.completer.Complete(ctx, ai.BreakdownPrompt(goal))
	if err != nil {
		return nil, fmt.Errorf("generate tasks: %w", err)
	}
	titles := splitTitles(raw)
	saved, err := s.tasks.CreateFromTitles(ctx, userID, titles, dom.PriorityMedium)
	if err != nil {
		return saved, fmt.Errorf("save generated tasks: %w", err)
	}
	if len(saved) == 0 {
		return nil, ErrNoTasksGenerated
	}
	return saved, nil
}

// Feedback summarizes productivity feedback over the caller's current tasks.
func (s *AdvisorService) Feedback(ctx context.Context, userID uuid.UUID) (string, error) {
	list, err := s.tasks.List(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", ErrNoTasksForFeedback
	}
	lines := make([]ai.TaskLine, len(list))
	for i, t := range list {
		lines[i] = ai.TaskLine{Title: t.Title, Priority: string(t.Priority)}
	}
	feedback, err := s.completer.Complete(ctx, ai.FeedbackPrompt(lines))
	if err != nil {
		return "", fmt.Errorf("feedback: %w", err)
	}
	return feedback, nil
}

// SuggestDeadline asks for a deadline for the given task title and requires
// the reply to contain a YYYY-MM-DD date.
func (s *AdvisorService) SuggestDeadline(ctx context.Context, title string) (string, error) {
	raw, err := s.completer.Complete(ctx, ai.DeadlinePrompt(title))
	if err != nil {
		return "", fmt.Errorf("suggest deadline: %w", err)
	}
	for _, field := range strings.Fields(raw) {
		field = strings.Trim(field, `"'.,`)
		if _, err := time.Parse("2006-01-02", field); err == nil {
			return field, nil
		}
	}
	return "", ErrBadSuggestion
}

// SuggestPriority asks for a priority for the given task title and requires
// the reply to normalize to the priority enum.
func (s *AdvisorService) SuggestPriority(ctx context.Context, title string) (string, error) {
	raw, err := s.completer.Complete(ctx, ai.PriorityPrompt(title))
	if err != nil {
		return "", fmt.Errorf("suggest priority: %w", err)
	}
	p, ok := dom.ParsePriority(strings.Trim(strings.TrimSpace(raw), `"'.`))
	if !ok {
		return "", ErrBadSuggestion
	}
	return string(p), nil
}

// splitTitles turns raw model output into candidate titles: one per line,
// bullets/numbering/quotes stripped, blanks dropped.
func splitTitles(raw string) []string {
	var titles []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = strings.TrimSpace(line)
		// "1." / "2)" numbering
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 && isDigits(line[:i]) {
			line = strings.TrimSpace(line[i+1:])
		}
		line = strings.Trim(line, `"`)
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
