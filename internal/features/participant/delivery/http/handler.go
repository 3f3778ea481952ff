package http

import (
	"net/http"
	"strconv"

	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/participant/models"
	participantservice "giveaway-engine-backend/internal/features/participant/service"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	service participantservice.ParticipantService
}

func NewParticipantHandler(service participantservice.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

func (h *ParticipantHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways/:id")
	{
		giveaways.POST("/join", middleware.RequireAuth(), h.join)
		giveaways.GET("/participants/me", middleware.RequireAuth(), h.getMe)
		giveaways.GET("/participants/count", h.count)
		giveaways.GET("/participants", middleware.RequireAdmin(), h.list)
	}
}

// @Summary Join a giveaway
// @Description Registers the caller as a participant and issues their invite code
// @Tags participants
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Success 201 {object} models.ParticipantResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/join [post]
func (h *ParticipantHandler) join(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	participant, err := h.service.Join(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// @Summary Get own participation
// @Tags participants
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} models.ParticipantResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/participants/me [get]
func (h *ParticipantHandler) getMe(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	participant, err := h.service.Get(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if participant == nil {
		c.JSON(http.StatusOK, gin.H{"joined": false})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// @Summary Participant count
// @Description Public aggregate; exposes no participant data
// @Tags participants
// @Produce json
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} map[string]int64
// @Router /giveaways/{id}/participants/count [get]
func (h *ParticipantHandler) count(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// @Summary List participants
// @Tags participants
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param status query string false "Filter by participant status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.ParticipantResponse
// @Router /giveaways/{id}/participants [get]
func (h *ParticipantHandler) list(c *gin.Context) {
	filter := models.ParticipantFilter{
		Status: models.ParticipantStatus(c.Query("status")),
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = v
	}

	participants, total, err := h.service.List(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"participants": participants,
		"total":        total,
	})
}
