package http

import (
	"net/http"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/task/models"
	taskservice "giveaway-engine-backend/internal/features/task/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	service taskservice.TaskService
}

func NewTaskHandler(service taskservice.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/giveaways/:id/tasks")
	{
		tasks.GET("", h.list)
		tasks.POST("/:taskId/start", middleware.RequireAuth(), h.start)
		tasks.POST("/:taskId/complete", middleware.RequireAuth(), h.complete)

		admin := tasks.Group("", middleware.RequireAdmin())
		{
			admin.POST("", h.create)
			admin.PUT("/:taskId", h.update)
			admin.DELETE("/:taskId", h.delete)
		}
	}
}

// @Summary Define a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param input body models.TaskCreate true "Task data"
// @Success 201 {object} models.Task
// @Failure 400 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/tasks [post]
func (h *TaskHandler) create(c *gin.Context) {
	var input models.TaskCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	task, err := h.service.AddTask(c.Request.Context(), identity.UserID, c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary List tasks
// @Description Returns the active task list in creation order
// @Tags tasks
// @Produce json
// @Param id path string true "Giveaway id or slug"
// @Success 200 {array} models.Task
// @Router /giveaways/{id}/tasks [get]
func (h *TaskHandler) list(c *gin.Context) {
	tasks, err := h.service.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param taskId path string true "Task id"
// @Param input body models.TaskUpdate true "Fields to update"
// @Success 200 {object} models.Task
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/tasks/{taskId} [put]
func (h *TaskHandler) update(c *gin.Context) {
	var input models.TaskUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	task, err := h.service.UpdateTask(c.Request.Context(), identity.UserID, c.Param("id"), c.Param("taskId"), &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Remove a task
// @Description Retires the task if anyone already completed it, deletes it otherwise
// @Tags tasks
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param taskId path string true "Task id"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) delete(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	if err := h.service.RemoveTask(c.Request.Context(), identity.UserID, c.Param("id"), c.Param("taskId")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Start a task
// @Description Marks the task as started for the caller, arming the minimum-duration check
// @Tags tasks
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param taskId path string true "Task id"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/tasks/{taskId}/start [post]
func (h *TaskHandler) start(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	if err := h.service.StartTask(c.Request.Context(), c.Param("id"), identity.UserID, c.Param("taskId")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Complete a task
// @Description Awards the task's points once per participant
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param taskId path string true "Task id"
// @Success 200 {object} models.Task
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/tasks/{taskId}/complete [post]
func (h *TaskHandler) complete(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	participant, err := h.service.CompleteTask(c.Request.Context(), c.Param("id"), identity.UserID, c.Param("taskId"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, participant)
}
