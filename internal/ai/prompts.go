package ai

import (
	"fmt"
	"strings"
)

// TaskLine is one task rendered into the feedback prompt.
type TaskLine struct {
	Title    string
	Priority string
}

// BreakdownPrompt asks the model to decompose a goal into one task per line.
func BreakdownPrompt(goal string) string {
	return fmt.Sprintf("You are a task management assistant. Break down the following goal into a list of short task titles, one per line. No headings, no numbering, no extra text, no markdown.\n\nGoal: %s", goal)
}

// FeedbackPrompt asks for short bullet-point productivity feedback.
func FeedbackPrompt(tasks []TaskLine) string {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("Title: %s, Priority: %s", t.Title, t.Priority)
	}
	return fmt.Sprintf("You are a productivity coach. Give short, simple, meaningful feedback in bullet points only. Keep it to 4-6 bullets, each under 12 words. No headings, no extra text.\n\nTasks:\n%s", strings.Join(lines, "\n\n"))
}

// DeadlinePrompt asks for a single concrete date.
func DeadlinePrompt(title string) string {
	return fmt.Sprintf("You are a task management assistant. Return a single concrete deadline date in YYYY-MM-DD format only. No extra text.\n\nTask: %s\n\nDeadline:", title)
}

// PriorityPrompt asks for one of low/medium/high.
func PriorityPrompt(title string) string {
	return fmt.Sprintf("You are a task management assistant. Return only one word: low, medium, or high. No extra text.\n\nTask: %s\n\nPriority:", title)
}
