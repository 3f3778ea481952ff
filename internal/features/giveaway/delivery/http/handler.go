package http

import (
	"net/http"
	"strconv"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/giveaway/models"
	giveawayservice "giveaway-engine-backend/internal/features/giveaway/service"
	"giveaway-engine-backend/internal/platform/notify"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type GiveawayHandler struct {
	service    giveawayservice.GiveawayService
	dispatcher notify.Dispatcher
}

func NewGiveawayHandler(service giveawayservice.GiveawayService, dispatcher notify.Dispatcher) *GiveawayHandler {
	return &GiveawayHandler{
		service:    service,
		dispatcher: dispatcher,
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.GET("", h.list)
		giveaways.GET("/:id", h.getByID)

		admin := giveaways.Group("", middleware.RequireAdmin())
		{
			admin.POST("", h.create)
			admin.PUT("/:id", h.update)
			admin.DELETE("/:id", h.delete)
			admin.POST("/:id/winner", h.selectWinner)
		}
	}
}

// @Summary Create a giveaway
// @Description Creates a giveaway in draft or scheduled state depending on its start date
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.GiveawayCreate true "Giveaway data"
// @Success 201 {object} models.GiveawayResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways [post]
func (h *GiveawayHandler) create(c *gin.Context) {
	var input models.GiveawayCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	giveaway, err := h.service.Create(c.Request.Context(), identity.UserID, &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, giveaway)
}

// @Summary Get a giveaway
// @Description Fetches a giveaway by id or slug
// @Tags giveaways
// @Produce json
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} models.GiveawayResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id} [get]
func (h *GiveawayHandler) getByID(c *gin.Context) {
	giveaway, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// @Summary List giveaways
// @Tags giveaways
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.GiveawayResponse
// @Router /giveaways [get]
func (h *GiveawayHandler) list(c *gin.Context) {
	filter := models.ListFilter{
		Status: models.GiveawayStatus(c.Query("status")),
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = v
	}

	giveaways, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, giveaways)
}

// @Summary Update a giveaway
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id"
// @Param input body models.GiveawayUpdate true "Fields to update"
// @Success 200 {object} models.GiveawayResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id} [put]
func (h *GiveawayHandler) update(c *gin.Context) {
	var input models.GiveawayUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	giveaway, err := h.service.Update(c.Request.Context(), identity.UserID, c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// @Summary Delete a giveaway
// @Description Deletes a giveaway; refused once anyone has joined
// @Tags giveaways
// @Security TelegramInitData
// @Param id path string true "Giveaway id"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id} [delete]
func (h *GiveawayHandler) delete(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	if err := h.service.Delete(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Select a winner
// @Description Runs the winner draw in the requested mode and finalizes the giveaway
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id"
// @Param input body models.SelectWinnerInput true "Selection mode"
// @Success 200 {object} models.SelectWinnerResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/winner [post]
func (h *GiveawayHandler) selectWinner(c *gin.Context) {
	var input models.SelectWinnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	result, err := h.service.SelectWinner(c.Request.Context(), identity.UserID, c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	h.notifyWinner(c, result)
	c.JSON(http.StatusOK, result)
}

// notifyWinner is best effort; the draw is already committed and a failed
// message must not surface as a request error.
func (h *GiveawayHandler) notifyWinner(c *gin.Context, result *models.SelectWinnerResult) {
	giveaway, err := h.service.GetRecord(c.Request.Context(), result.GiveawayID)
	if err != nil {
		log.Warn().Err(err).Str("giveaway_id", result.GiveawayID).Msg("failed to load giveaway for winner notification")
		return
	}
	if err := h.dispatcher.WinnerSelected(c.Request.Context(), result.WinnerID, giveaway); err != nil {
		log.Warn().Err(err).Int64("winner_id", result.WinnerID).Msg("failed to notify winner")
	}
}
