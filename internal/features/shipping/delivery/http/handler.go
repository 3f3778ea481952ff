package http

import (
	"net/http"
	"strconv"

	apperrors "giveaway-engine-backend/internal/common/errors"
	"giveaway-engine-backend/internal/common/middleware"
	"giveaway-engine-backend/internal/features/shipping/models"
	shippingservice "giveaway-engine-backend/internal/features/shipping/service"

	"github.com/gin-gonic/gin"
)

type ShippingHandler struct {
	service shippingservice.ShippingService
}

func NewShippingHandler(service shippingservice.ShippingService) *ShippingHandler {
	return &ShippingHandler{service: service}
}

func (h *ShippingHandler) RegisterRoutes(router *gin.RouterGroup) {
	shipping := router.Group("/giveaways/:id/shipping", middleware.RequireAuth())
	{
		shipping.PUT("", h.submit)
		shipping.GET("", h.getOwn)
		shipping.GET("/:userId", middleware.RequireAdmin(), h.getByUser)
	}
}

// @Summary Submit shipping info
// @Description Accepts the winner's delivery address; resubmitting overwrites it
// @Tags shipping
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param input body models.ShippingSubmit true "Delivery address"
// @Success 200 {object} models.ShippingInfo
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/shipping [put]
func (h *ShippingHandler) submit(c *gin.Context) {
	var input models.ShippingSubmit
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	info, err := h.service.SubmitShipping(c.Request.Context(), c.Param("id"), identity.UserID, &input)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary Get own shipping info
// @Tags shipping
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Success 200 {object} models.ShippingInfo
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/shipping [get]
func (h *ShippingHandler) getOwn(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	info, err := h.service.GetShipping(c.Request.Context(), c.Param("id"), identity.UserID, identity.UserID, identity.IsAdmin)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary Get a winner's shipping info
// @Tags shipping
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway id or slug"
// @Param userId path int true "Winner user id"
// @Success 200 {object} models.ShippingInfo
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/shipping/{userId} [get]
func (h *ShippingHandler) getByUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("userId", "must be a numeric user id"))
		c.Abort()
		return
	}

	identity, _ := middleware.GetIdentity(c)
	info, err := h.service.GetShipping(c.Request.Context(), c.Param("id"), targetID, identity.UserID, identity.IsAdmin)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, info)
}
