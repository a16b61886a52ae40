package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
	paginator   pagination.Paginator
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, paginator pagination.Paginator) *RideHandler {
	return &RideHandler{rideService: rideService, paginator: paginator}
}

// RideRequest is the HTTP request body for writing a ride.
type RideRequest struct {
	Status           *string  `json:"status" binding:"omitempty,max=50"`
	RiderID          *int64   `json:"rider_id"`
	DriverID         *int64   `json:"driver_id"`
	PickupLatitude   *float64 `json:"pickup_latitude"`
	PickupLongitude  *float64 `json:"pickup_longitude"`
	DropoffLatitude  *float64 `json:"dropoff_latitude"`
	DropoffLongitude *float64 `json:"dropoff_longitude"`
	PickupTime       *string  `json:"pickup_time"`
}

// RideResponse is the flat HTTP representation of a ride, returned by writes.
type RideResponse struct {
	ID               int64     `json:"id"`
	Status           string    `json:"status"`
	RiderID          int64     `json:"rider_id"`
	DriverID         int64     `json:"driver_id"`
	PickupLatitude   float64   `json:"pickup_latitude"`
	PickupLongitude  float64   `json:"pickup_longitude"`
	DropoffLatitude  float64   `json:"dropoff_latitude"`
	DropoffLongitude float64   `json:"dropoff_longitude"`
	PickupTime       time.Time `json:"pickup_time"`
}

// RideListingResponse is the rich HTTP representation of a ride, returned by
// list and get.
type RideListingResponse struct {
	RideResponse
	Rider                  UserResponse        `json:"rider"`
	Driver                 UserResponse        `json:"driver"`
	DistanceToPickupMeters *float64            `json:"distance_to_pickup_meters"`
	TodaysRideEvents       []RideEventResponse `json:"todays_ride_events"`
}

func newRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:               r.ID,
		Status:           r.Status,
		RiderID:          r.RiderID,
		DriverID:         r.DriverID,
		PickupLatitude:   r.PickupLatitude,
		PickupLongitude:  r.PickupLongitude,
		DropoffLatitude:  r.DropoffLatitude,
		DropoffLongitude: r.DropoffLongitude,
		PickupTime:       r.PickupTime,
	}
}

func newRideListingResponse(l *domain.RideListing) RideListingResponse {
	events := make([]RideEventResponse, len(l.TodaysRideEvents))
	for i := range l.TodaysRideEvents {
		events[i] = newRideEventResponse(&l.TodaysRideEvents[i])
	}
	return RideListingResponse{
		RideResponse:           newRideResponse(&l.Ride),
		Rider:                  newUserResponse(&l.Rider),
		Driver:                 newUserResponse(&l.Driver),
		DistanceToPickupMeters: l.DistanceToPickupMeters,
		TodaysRideEvents:       events,
	}
}

func (r RideRequest) input() (service.RideInput, error) {
	verr := domain.NewValidationError()
	in := service.RideInput{
		Status:           r.Status,
		RiderID:          r.RiderID,
		DriverID:         r.DriverID,
		PickupLatitude:   r.PickupLatitude,
		PickupLongitude:  r.PickupLongitude,
		DropoffLatitude:  r.DropoffLatitude,
		DropoffLongitude: r.DropoffLongitude,
		PickupTime:       parseTime("pickup_time", r.PickupTime, verr),
	}
	return in, verr.Err()
}

// listParams reads the filter, annotation and ordering query parameters.
func listParams(c *gin.Context) service.RideListParams {
	params := service.RideListParams{
		Status:     c.Query("status"),
		RiderEmail: c.Query("rider_email"),
		Ordering:   c.Query("ordering"),
	}
	if lat, ok := c.GetQuery("lat"); ok {
		params.Lat = &lat
	}
	if lon, ok := c.GetQuery("lon"); ok {
		params.Lon = &lon
	}
	return params
}

// List handles GET /rides
func (h *RideHandler) List(c *gin.Context) {
	page, err := h.paginator.Parse(c.Request.URL.Query())
	if err != nil {
		RespondError(c, err)
		return
	}

	listings, total, err := h.rideService.List(c.Request.Context(), listParams(c), page)
	if err != nil {
		RespondError(c, err)
		return
	}

	results := make([]RideListingResponse, len(listings))
	for i, l := range listings {
		results[i] = newRideListingResponse(l)
	}
	respondJSON(c, http.StatusOK, pagination.NewPage(requestURL(c), page, total, results))
}

// Get handles GET /rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	listing, err := h.rideService.Get(c.Request.Context(), id, listParams(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newRideListingResponse(listing))
}

// Create handles POST /rides
func (h *RideHandler) Create(c *gin.Context) {
	var req RideRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err)
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, newRideResponse(ride))
}

// Update handles PUT /rides/:id
func (h *RideHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch handles PATCH /rides/:id
func (h *RideHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *RideHandler) update(c *gin.Context, partial bool) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req RideRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err)
		return
	}

	ride, err := h.rideService.Update(c.Request.Context(), id, in, partial)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newRideResponse(ride))
}

// Delete handles DELETE /rides/:id
func (h *RideHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.rideService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
