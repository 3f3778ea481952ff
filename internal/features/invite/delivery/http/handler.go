package http

import (
	"net/http"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/invite/models"
	inviteservice "giveaway-engine-backend/internal/features/invite/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	service inviteservice.InviteService
}

func NewInviteHandler(service inviteservice.InviteService) *InviteHandler {
	return &InviteHandler{service: service}
}

func (h *InviteHandler) RegisterRoutes(router *gin.RouterGroup) {
	invites := router.Group("/giveaways/:id/invites", middleware.RequireAuth())
	{
		invites.POST("/redeem", h.redeem)
		invites.GET("/me", h.stats)
	}
}

// @Summary Redeem an invite code
// @Description Credits the referrer and grants the caller their joining bonus
// @Tags invites
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param input body models.InviteRedeem true "Invite code"
// @Success 200 {object} models.InviteRedeemResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/invites/redeem [post]
func (h *InviteHandler) redeem(c *gin.Context) {
	var input models.InviteRedeem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	result, err := h.service.ProcessInvite(c.Request.Context(), c.Param("id"), identity.UserID, input.Code)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Own invite standing
// @Tags invites
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} models.InviteStats
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/invites/me [get]
func (h *InviteHandler) stats(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	stats, err := h.service.GetInviteStats(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, stats)
}
