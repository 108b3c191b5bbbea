package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/watch"
	"github.com/gin-gonic/gin"
)

var sseHeartbeatInterval = 25 * time.Second

// EventsHandler streams live snapshots of the scoped resource lists over
// server-sent events. Each connection owns a watcher: any change in scope
// triggers a full re-fetch and a fresh snapshot event, so clients converge
// regardless of event ordering.
type EventsHandler struct {
	orderService      portssvc.OrderSvcFacade
	assignmentService portssvc.AssignmentSvcFacade
	buyListService    portssvc.BuyListSvcFacade
	feed              *changefeed.Feed
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(services *portssvc.ServiceContainer, feed *changefeed.Feed) *EventsHandler {
	return &EventsHandler{
		orderService:      services.Order,
		assignmentService: services.Assignment,
		buyListService:    services.BuyList,
		feed:              feed,
	}
}

// registerEventRoutes sets up the SSE routes behind the profile gate.
func registerEventRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, feed *changefeed.Feed) {
	h := NewEventsHandler(services, feed)

	events := rg.Group("/events")
	{
		events.GET("/orders", h.StreamOrders)
		events.GET("/assignments", h.StreamAssignments)
		events.GET("/buy-list", h.StreamBuyList)
	}
}

// streamWatcher runs the shared SSE loop: emit the current snapshot, then a
// fresh one on every applied update, with heartbeat comments in between.
func streamWatcher[T any, R any](c *gin.Context, w *watch.Watcher[T], toResponse func([]T) R) {
	defer w.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		// The update channel must be captured before the snapshot is read:
		// a snapshot applied in between closes the old channel, so waiting
		// on the newer one would miss exactly the state just read.
		updated := w.Updated()
		snapshot, loading, err := w.Snapshot()
		if !loading {
			if err != nil {
				c.SSEvent("error", ErrorResponse{Error: "Failed to refresh snapshot"})
			} else {
				c.SSEvent("snapshot", toResponse(snapshot))
			}
			c.Writer.Flush()
		}

	wait:
		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-updated:
				break wait
			case <-heartbeat.C:
				// Heartbeats keep the connection alive without re-sending
				// the snapshot.
				c.SSEvent("heartbeat", time.Now().Unix())
				c.Writer.Flush()
			}
		}
	}
}

// StreamOrders godoc
// @Summary Live order list
// @Description Server-sent events: a full scoped snapshot on connect and after every order or assignment change in the company.
// @Tags events
// @Produce text/event-stream
// @Success 200
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /events/orders [get]
func (h *EventsHandler) StreamOrders(c *gin.Context) {
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	fetch := func(ctx context.Context) ([]domain.OrderWithAssignments, error) {
		return h.orderService.ListOrders(ctx, profile, portssvc.OrderListParams{})
	}
	w := watch.New(c.Request.Context(), fetch, h.feed, *profile.CompanyID,
		changefeed.TableOrders, changefeed.TableAssignments)

	streamWatcher(c, w, func(orders []domain.OrderWithAssignments) dto.ListOrdersResponse {
		return dto.ToListOrdersResponse(orders, "")
	})
}

// StreamAssignments godoc
// @Summary Live assignment list for the caller
// @Tags events
// @Produce text/event-stream
// @Success 200
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /events/assignments [get]
func (h *EventsHandler) StreamAssignments(c *gin.Context) {
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	fetch := func(ctx context.Context) ([]domain.OrderAssignment, error) {
		return h.assignmentService.ListMyAssignments(ctx, profile)
	}
	w := watch.New(c.Request.Context(), fetch, h.feed, *profile.CompanyID,
		changefeed.TableAssignments, changefeed.TableOrders)

	streamWatcher(c, w, dto.ToListAssignmentsResponse)
}

// StreamBuyList godoc
// @Summary Live buy list
// @Tags events
// @Produce text/event-stream
// @Success 200
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /events/buy-list [get]
func (h *EventsHandler) StreamBuyList(c *gin.Context) {
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	fetch := func(ctx context.Context) ([]domain.BuyListItem, error) {
		return h.buyListService.ListItems(ctx, profile)
	}
	w := watch.New(c.Request.Context(), fetch, h.feed, *profile.CompanyID,
		changefeed.TableBuyList)

	streamWatcher(c, w, dto.ToListBuyListResponse)
}
