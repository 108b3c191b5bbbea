package handlers

import (
	"net/http"

	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// BuyListHandler serves the shared shopping list.
type BuyListHandler struct {
	buyListService portssvc.BuyListSvcFacade
}

// NewBuyListHandler creates a new BuyListHandler.
func NewBuyListHandler(services *portssvc.ServiceContainer) *BuyListHandler {
	return &BuyListHandler{buyListService: services.BuyList}
}

// registerBuyListRoutes sets up the buy list routes behind the profile gate.
func registerBuyListRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewBuyListHandler(services)

	items := rg.Group("/buy-list")
	{
		items.GET("", h.ListItems)
		items.POST("", h.AddItem)
		items.PATCH("/:item_id", h.UpdateItem)
		items.POST("/:item_id/bought", h.ToggleBought)
		items.DELETE("/:item_id", h.DeleteItem)
	}
}

// ListItems godoc
// @Summary List the company's buy list
// @Tags buy-list
// @Produce json
// @Success 200 {object} dto.ListBuyListResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /buy-list [get]
func (h *BuyListHandler) ListItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	items, err := h.buyListService.ListItems(c.Request.Context(), profile)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list buy list items")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBuyListResponse(items))
}

// AddItem godoc
// @Summary Add a buy list item
// @Description Any company member may add items. The item belongs to the company, not its creator.
// @Tags buy-list
// @Accept json
// @Produce json
// @Param item body dto.CreateBuyListItemRequest true "Item details"
// @Success 201 {object} dto.BuyListItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /buy-list [post]
func (h *BuyListHandler) AddItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateBuyListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	item, err := h.buyListService.AddItem(c.Request.Context(), profile, req.ItemName, req.EstimatedCost)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to add buy list item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBuyListItemResponse(item))
}

// UpdateItem godoc
// @Summary Update a buy list item
// @Tags buy-list
// @Accept json
// @Produce json
// @Param item_id path string true "Item ID"
// @Param item body dto.UpdateBuyListItemRequest true "Fields to change"
// @Success 200 {object} dto.BuyListItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /buy-list/{item_id} [patch]
func (h *BuyListHandler) UpdateItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateBuyListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	item, err := h.buyListService.UpdateItem(c.Request.Context(), profile, c.Param("item_id"), req.ToUpdateBuyListItemInput())
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update buy list item")
		return
	}
	c.JSON(http.StatusOK, dto.ToBuyListItemResponse(item))
}

// ToggleBought godoc
// @Summary Toggle an item between pending and received
// @Tags buy-list
// @Accept json
// @Param item_id path string true "Item ID"
// @Param flag body dto.ToggleBoughtRequest true "Received flag"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /buy-list/{item_id}/bought [post]
func (h *BuyListHandler) ToggleBought(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ToggleBoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	if err := h.buyListService.ToggleBought(c.Request.Context(), profile, c.Param("item_id"), *req.Received); err != nil {
		handleServiceError(c, logger, err, "Failed to toggle item status")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteItem godoc
// @Summary Delete a buy list item
// @Description Any company member may delete any item.
// @Tags buy-list
// @Param item_id path string true "Item ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /buy-list/{item_id} [delete]
func (h *BuyListHandler) DeleteItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.buyListService.DeleteItem(c.Request.Context(), profile, c.Param("item_id")); err != nil {
		handleServiceError(c, logger, err, "Failed to delete buy list item")
		return
	}
	c.Status(http.StatusNoContent)
}
