package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sandipsawant10/smart-task-manager/internal/auth"
	"github.com/sandipsawant10/smart-task-manager/internal/dto"
	"github.com/sandipsawant10/smart-task-manager/internal/service"
)

// AIHandler exposes the advisory endpoints. Suggestions are returned to the
// caller, never written to storage directly.
type AIHandler struct {
	advisor *service.AdvisorService
	tasks   *service.TaskService
}

func NewAIHandler(advisor *service.AdvisorService, tasks *service.TaskService) *AIHandler {
	return &AIHandler{advisor: advisor, tasks: tasks}
}

// Generate godoc
// @Summary      Decompose a goal into tasks
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.GenerateTasksRequest  true  "Goal"
// @Success      201   {object}  dto.GenerateTasksResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /ai/generate [post]
func (h *AIHandler) Generate(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal is required"})
		return
	}
	userID := auth.UserIDFromContext(c)
	tasks, err := h.advisor.GenerateTasks(c.Request.Context(), userID, req.Goal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating tasks"})
		return
	}
	c.JSON(http.StatusCreated, dto.GenerateTasksResponse{Tasks: tasksToResponses(tasks)})
}

// Feedback godoc
// @Summary      Productivity feedback over my tasks
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.FeedbackResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /ai/feedback [get]
func (h *AIHandler) Feedback(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	feedback, err := h.advisor.Feedback(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoTasksForFeedback) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no tasks found for feedback"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating feedback"})
		return
	}
	c.JSON(http.StatusOK, dto.FeedbackResponse{Feedback: feedback})
}

// SuggestDeadline godoc
// @Summary      Suggest a deadline for a task
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SuggestRequest  true  "Task id or title"
// @Success      200   {object}  dto.SuggestResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /ai/deadline [post]
func (h *AIHandler) SuggestDeadline(c *gin.Context) {
	title, ok := h.suggestTitle(c)
	if !ok {
		return
	}
	suggestion, err := h.advisor.SuggestDeadline(c.Request.Context(), title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error suggesting deadline"})
		return
	}
	c.JSON(http.StatusOK, dto.SuggestResponse{Suggestion: suggestion})
}

// SuggestPriority godoc
// @Summary      Suggest a priority for a task
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SuggestRequest  true  "Task id or title"
// @Success      200   {object}  dto.SuggestResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /ai/priority [post]
func (h *AIHandler) SuggestPriority(c *gin.Context) {
	title, ok := h.suggestTitle(c)
	if !ok {
		return
	}
	suggestion, err := h.advisor.SuggestPriority(c.Request.Context(), title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error suggesting priority"})
		return
	}
	c.JSON(http.StatusOK, dto.SuggestResponse{Suggestion: suggestion})
}

// suggestTitle resolves the title to advise on: the stored task's title when
// task_id is given (404 if not owned), the bare title otherwise.
func (h *AIHandler) suggestTitle(c *gin.Context) (string, bool) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.TaskID == "" && req.Title == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id or title is required"})
		return "", false
	}
	if req.TaskID == "" {
		return req.Title, true
	}
	id, err := uuid.Parse(req.TaskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return "", false
	}
	userID := auth.UserIDFromContext(c)
	t, err := h.tasks.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch task"})
		return "", false
	}
	return t.Title, true
}
