package booking

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"hotel/internal/domain"
	"hotel/internal/middleware"
	"hotel/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts booking routes on a group that already requires auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/availability", h.CheckAvailability)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.PATCH("/:id/confirm", h.ConfirmBooking)
		bookings.PATCH("/:id/check-in", h.CheckIn)
		bookings.PATCH("/:id/check-out", h.CheckOut)
		bookings.PATCH("/:id/cancel", h.CancelBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

func actorFrom(c *gin.Context) Actor {
	return Actor{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), CreateInput{
		RoomIDs:         req.Rooms,
		CheckIn:         req.CheckInDate,
		CheckOut:        req.CheckOutDate,
		ExtraServiceIDs: req.ExtraServices,
		GuestID:         req.User,
	}, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	items, err := h.service.List(c.Request.Context(), ListFilter{
		Status:  domain.BookingStatus(strings.ToLower(strings.TrimSpace(q.Status))),
		RoomID:  q.RoomID,
		GuestID: q.UserID,
	}, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items, "count": len(items)})
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	roomIDs, err := parseIDList(c.Query("rooms"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "rooms must be a comma separated list of ids")
		return
	}
	in, errIn := domain.ParseDate(c.Query("check_in"))
	out, errOut := domain.ParseDate(c.Query("check_out"))
	if errIn != nil || errOut != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in and check_out must be dates (YYYY-MM-DD)")
		return
	}

	res, err := h.service.CheckAvailability(c.Request.Context(), roomIDs, in, out, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, UpdateInput{
		CheckIn:         req.CheckInDate,
		CheckOut:        req.CheckOutDate,
		ExtraServiceIDs: req.ExtraServices,
	}, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.runTransition(c, h.service.Confirm)
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.runTransition(c, h.service.CheckIn)
}

func (h *Handler) CheckOut(c *gin.Context) {
	h.runTransition(c, h.service.CheckOut)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	h.runTransition(c, h.service.Cancel)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) runTransition(c *gin.Context, fn func(context.Context, int64, Actor) (*domain.Booking, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func parseIDList(raw string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
