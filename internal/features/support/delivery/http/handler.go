package http

import (
	"net/http"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/support/models"
	supportservice "giveaway-engine-backend/internal/features/support/service"

	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	service supportservice.SupportService
}

func NewSupportHandler(service supportservice.SupportService) *SupportHandler {
	return &SupportHandler{service: service}
}

func (h *SupportHandler) RegisterRoutes(router *gin.RouterGroup) {
	support := router.Group("/giveaways/:id/support")
	{
		support.POST("", middleware.RequireAuth(), h.record)
		support.GET("/totals", h.totals)
		support.GET("/board", h.board)
	}
}

// @Summary Pledge a contribution
// @Tags support
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param input body models.SupportCreate true "Contribution"
// @Success 201 {object} models.Support
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/support [post]
func (h *SupportHandler) record(c *gin.Context) {
	var input models.SupportCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	support, err := h.service.RecordSupport(c.Request.Context(), c.Param("id"), identity.UserID, &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, support)
}

// @Summary Contribution totals
// @Tags support
// @Produce json
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} models.SupportTotals
// @Router /giveaways/{id}/support/totals [get]
func (h *SupportHandler) totals(c *gin.Context) {
	totals, err := h.service.GetTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, totals)
}

// @Summary Supporter board
// @Description Lists contributions in submission order with anonymous entries masked
// @Tags support
// @Produce json
// @Param id path string true "Giveaway id or slug"
// @Success 200 {array} models.SupporterView
// @Router /giveaways/{id}/support/board [get]
func (h *SupportHandler) board(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	supporters, err := h.service.ListSupporters(c.Request.Context(), c.Param("id"), identity.IsAdmin)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, supporters)
}
