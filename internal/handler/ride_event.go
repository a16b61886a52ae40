package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// RideEventHandler handles HTTP requests for ride events.
type RideEventHandler struct {
	eventService *service.RideEventService
	paginator    pagination.Paginator
}

// NewRideEventHandler creates a new RideEventHandler.
func NewRideEventHandler(eventService *service.RideEventService, paginator pagination.Paginator) *RideEventHandler {
	return &RideEventHandler{eventService: eventService, paginator: paginator}
}

// RideEventRequest is the HTTP request body for writing a ride event.
type RideEventRequest struct {
	RideID      *int64  `json:"ride_id"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	CreatedAt   *string `json:"created_at"`
}

// RideEventResponse is the HTTP representation of a ride event.
type RideEventResponse struct {
	ID          int64     `json:"id"`
	RideID      int64     `json:"ride_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRideEventResponse(e *domain.RideEvent) RideEventResponse {
	return RideEventResponse{
		ID:          e.ID,
		RideID:      e.RideID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func (r RideEventRequest) input() (service.RideEventInput, error) {
	verr := domain.NewValidationError()
	in := service.RideEventInput{
		RideID:      r.RideID,
		Description: r.Description,
		CreatedAt:   parseTime("created_at", r.CreatedAt, verr),
	}
	return in, verr.Err()
}

// List handles GET /ride-events
func (h *RideEventHandler) List(c *gin.Context) {
	page, err := h.paginator.Parse(c.Request.URL.Query())
	if err != nil {
		RespondError(c, err)
		return
	}

	var filter repository.RideEventFilter
	if raw := c.Query("ride_id"); raw != "" {
		rideID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondError(c, domain.FieldError("ride_id", "Select a valid choice. That choice is not one of the available choices."))
			return
		}
		filter.RideID = rideID
	}

	events, total, err := h.eventService.List(c.Request.Context(), filter, page)
	if err != nil {
		RespondError(c, err)
		return
	}

	results := make([]RideEventResponse, len(events))
	for i, e := range events {
		results[i] = newRideEventResponse(e)
	}
	respondJSON(c, http.StatusOK, pagination.NewPage(requestURL(c), page, total, results))
}

// Get handles GET /ride-events/:id
func (h *RideEventHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newRideEventResponse(event))
}

// Create handles POST /ride-events
func (h *RideEventHandler) Create(c *gin.Context) {
	var req RideEventRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err)
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, newRideEventResponse(event))
}

// Update handles PUT /ride-events/:id
func (h *RideEventHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch handles PATCH /ride-events/:id
func (h *RideEventHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *RideEventHandler) update(c *gin.Context, partial bool) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req RideEventRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err)
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, in, partial)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newRideEventResponse(event))
}

// Delete handles DELETE /ride-events/:id
func (h *RideEventHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
