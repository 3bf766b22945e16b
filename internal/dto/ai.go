package dto

// GenerateTasksRequest is the JSON body for POST /ai/generate.
type GenerateTasksRequest struct {
	Goal string `json:"goal" binding:"required,min=1,max=1000"`
}

// GenerateTasksResponse returns the tasks persisted from the decomposed goal.
type GenerateTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// FeedbackResponse carries free-text productivity feedback for display.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

// SuggestRequest is the JSON body for POST /ai/deadline and POST /ai/priority.
// Either an owned task id or a bare title; when task_id is set the stored
// task's title is used (404 if the caller does not own it).
type SuggestRequest struct {
	TaskID string `json:"task_id" binding:"omitempty,uuid"`
	Title  string `json:"title" binding:"omitempty,min=1,max=200"`
}

// SuggestResponse carries a validated advisory suggestion.
type SuggestResponse struct {
	Suggestion string `json:"suggestion"`
}
