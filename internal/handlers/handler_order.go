package handlers

import (
	"net/http"
	"strconv"

	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves the order resource and its assignments.
type OrderHandler struct {
	orderService      portssvc.OrderSvcFacade
	assignmentService portssvc.AssignmentSvcFacade
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(services *portssvc.ServiceContainer) *OrderHandler {
	return &OrderHandler{
		orderService:      services.Order,
		assignmentService: services.Assignment,
	}
}

// registerOrderRoutes sets up the order and assignment routes behind the
// profile gate.
func registerOrderRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewOrderHandler(services)

	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", middleware.RequireManager(), h.CreateOrder)
		orders.GET("/:order_id", h.GetOrder)
		orders.PATCH("/:order_id", h.UpdateOrder)
		orders.DELETE("/:order_id", middleware.RequireManager(), h.DeleteOrder)
		orders.PUT("/:order_id/assignments", middleware.RequireManager(), h.AssignWorkers)
		orders.POST("/:order_id/done", h.MarkDone)
	}

	assignments := rg.Group("/assignments")
	{
		assignments.GET("", h.ListMyAssignments)
		assignments.POST("/:assignment_id/star", h.ToggleStarred)
	}
}

// ListOrders godoc
// @Summary List orders in the caller's scope
// @Description Managers see all company orders; workers see orders assigned to them plus general orders. Ordered by creation time descending, paginated by cursor.
// @Tags orders
// @Produce json
// @Param limit query int false "Page size (max 50)"
// @Param next_token query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListOrdersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	params := portssvc.OrderListParams{}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("next_token"); token != "" {
		before, err := pagination.DecodeToken(token)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid next_token"})
			return
		}
		params.Before = &before
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), profile, params)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list orders")
		return
	}

	nextToken := ""
	if params.Limit > 0 && len(orders) == params.Limit {
		nextToken = pagination.EncodeToken(orders[len(orders)-1].CreatedAt)
	}
	c.JSON(http.StatusOK, dto.ToListOrdersResponse(orders, nextToken))
}

// CreateOrder godoc
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order details"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), profile, req.ToCreateOrderInput())
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create order")
		return
	}

	created, err := h.orderService.GetOrder(c.Request.Context(), profile, order.OrderID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to load created order")
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(created))
}

// GetOrder godoc
// @Summary Get one order
// @Description Workers get 404 for specific orders they are not assigned to, identical to a nonexistent order.
// @Tags orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders/{order_id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), profile, c.Param("order_id"))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to load order")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// UpdateOrder godoc
// @Summary Update an order
// @Description Managers may change any field; workers may only change status on orders they can see.
// @Tags orders
// @Accept json
// @Produce json
// @Param order_id path string true "Order ID"
// @Param order body dto.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders/{order_id} [patch]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), profile, c.Param("order_id"), req.ToUpdateOrderInput())
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update order")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// DeleteOrder godoc
// @Summary Delete an order
// @Description Removes the order's assignment rows, then the order, in one transaction.
// @Tags orders
// @Param order_id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders/{order_id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), profile, c.Param("order_id")); err != nil {
		handleServiceError(c, logger, err, "Failed to delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignWorkers godoc
// @Summary Replace the order's worker assignments
// @Description Replaces all assignment rows with the given set. Starred and done flags reset for everyone, including workers present in both the old and new set. An empty list clears all assignments.
// @Tags orders
// @Accept json
// @Produce json
// @Param order_id path string true "Order ID"
// @Param assignments body dto.AssignWorkersRequest true "Replacement worker set"
// @Success 200 {object} dto.ListAssignmentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders/{order_id}/assignments [put]
func (h *OrderHandler) AssignWorkers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AssignWorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	assignments, err := h.assignmentService.AssignWorkers(c.Request.Context(), profile, c.Param("order_id"), req.WorkerIDs)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to assign workers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAssignmentsResponse(assignments))
}

// MarkDone godoc
// @Summary Set the caller's done flag on an order
// @Description Records per-worker completion. On a general order the assignment row is created on demand; repeated toggles converge on one row.
// @Tags orders
// @Accept json
// @Param order_id path string true "Order ID"
// @Param flag body dto.SetFlagRequest true "Done flag"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /orders/{order_id}/done [post]
func (h *OrderHandler) MarkDone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	if err := h.assignmentService.MarkDone(c.Request.Context(), profile, c.Param("order_id"), *req.Value); err != nil {
		handleServiceError(c, logger, err, "Failed to set done flag")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMyAssignments godoc
// @Summary List the caller's assignment rows
// @Tags assignments
// @Produce json
// @Success 200 {object} dto.ListAssignmentsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /assignments [get]
func (h *OrderHandler) ListMyAssignments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	assignments, err := h.assignmentService.ListMyAssignments(c.Request.Context(), profile)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list assignments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAssignmentsResponse(assignments))
}

// ToggleStarred godoc
// @Summary Set the star flag on the caller's assignment
// @Description Only the caller's own assignment row can be starred; another worker's row reads as not found.
// @Tags assignments
// @Accept json
// @Param assignment_id path string true "Assignment ID"
// @Param flag body dto.SetFlagRequest true "Star flag"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /assignments/{assignment_id}/star [post]
func (h *OrderHandler) ToggleStarred(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	if err := h.assignmentService.ToggleStarred(c.Request.Context(), profile, c.Param("assignment_id"), *req.Value); err != nil {
		handleServiceError(c, logger, err, "Failed to set star flag")
		return
	}
	c.Status(http.StatusNoContent)
}
