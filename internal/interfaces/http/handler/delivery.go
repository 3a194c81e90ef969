package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/application/event"
)

// DeliveryHandler is the operator console for domain event delivery
type DeliveryHandler struct {
	BaseHandler
	delivery *event.DeliveryService
}

func NewDeliveryHandler(delivery *event.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

// RedeliverQuery narrows a bulk redelivery to one event type
type RedeliverQuery struct {
	EventType string `form:"event_type" binding:"omitempty,max=100"`
}

// RequeuedData reports how many events went back to the queue
type RequeuedData struct {
	Requeued int64 `json:"requeued"`
}

// DeadLetters godoc
// @ID           listDeadLetterEvents
// @Summary      List dead letter events
// @Description  Events whose delivery retries ran out
// @Tags         events
// @Produce      json
// @Param        event_type query string false "Only this event type"
// @Param        aggregate_type query string false "Only events of this aggregate type"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]event.EventView]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/dead [get]
func (h *DeliveryHandler) DeadLetters(c *gin.Context) {
	var q event.DeadLetterQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.delivery.DeadLetters(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Events, page.Total, page.Page, page.PageSize)
}

// RedeliverDead godoc
// @ID           redeliverDeadEvents
// @Summary      Requeue dead letter events
// @Tags         events
// @Produce      json
// @Param        event_type query string false "Only this event type"
// @Success      200 {object} APIResponse[RequeuedData]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/dead/redeliver [post]
func (h *DeliveryHandler) RedeliverDead(c *gin.Context) {
	var q RedeliverQuery
	if !h.bindQuery(c, &q) {
		return
	}
	n, err := h.delivery.RedeliverDead(c.Request.Context(), q.EventType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RequeuedData{Requeued: n})
}

// Backlog godoc
// @ID           getEventBacklog
// @Summary      Event delivery backlog
// @Description  Counts per delivery status and the age of the oldest undelivered event
// @Tags         events
// @Produce      json
// @Success      200 {object} APIResponse[event.Backlog]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/backlog [get]
func (h *DeliveryHandler) Backlog(c *gin.Context) {
	b, err := h.delivery.Backlog(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Trail godoc
// @ID           getEventTrail
// @Summary      Events raised by one aggregate
// @Description  Everything a group, goal, contribution or user published, oldest first
// @Tags         events
// @Produce      json
// @Param        aggregateId path string true "Aggregate ID" format(uuid)
// @Success      200 {object} APIResponse[[]event.EventView]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/trail/{aggregateId} [get]
func (h *DeliveryHandler) Trail(c *gin.Context) {
	id, ok := h.pathUUID(c, "aggregateId")
	if !ok {
		return
	}
	trail, err := h.delivery.Trail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trail)
}

// Event godoc
// @ID           getEvent
// @Summary      Get one outbox event with its payload
// @Tags         events
// @Produce      json
// @Param        id path string true "Outbox entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.EventView]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/{id} [get]
func (h *DeliveryHandler) Event(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.delivery.Event(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Redeliver godoc
// @ID           redeliverEvent
// @Summary      Requeue one dead letter event
// @Tags         events
// @Produce      json
// @Param        id path string true "Outbox entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.EventView]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/events/{id}/redeliver [post]
func (h *DeliveryHandler) Redeliver(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.delivery.Redeliver(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
