package bookings

import (
	"context"
	"net/http"

	"github.com/chris/academy-booking-core/pkg/api"
	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/booking"
	"github.com/chris/academy-booking-core/pkg/handlers"
	"github.com/chris/academy-booking-core/pkg/mapping"
	"github.com/chris/academy-booking-core/pkg/middleware"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// BookingService is the part of booking.Service the HTTP API drives.
type BookingService interface {
	BookingSummary(ctx context.Context, userID string, req booking.SlotRequest) (*booking.Summary, error)
	RequestSlot(ctx context.Context, userID string, req booking.SlotRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	CreatePaymentOrder(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	VerifyPayment(ctx context.Context, userID string, req booking.VerifyPaymentRequest) (*models.Booking, error)
	CancelPaymentOrder(ctx context.Context, userID, orderID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID, reason string) (*models.Booking, error)
	ApproveBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error)
	RejectBooking(ctx context.Context, actorID, bookingID, reason string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error)
}

var _ BookingService = (*booking.Service)(nil)

// BookingsHandler holds the dependencies for booking and payment handlers.
type BookingsHandler struct {
	Service   BookingService
	Validator *handlers.Validator
	// KeyID is the gateway's public key, returned to clients opening checkout.
	KeyID string
}

func NewBookingsHandler(service BookingService, validator *handlers.Validator, keyID string) *BookingsHandler {
	return &BookingsHandler{Service: service, Validator: validator, KeyID: keyID}
}

// Routes mounts the booking API. Every route requires a caller identity.
func (h *BookingsHandler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Post("/bookings/summary", h.BookingSummary)
		r.Post("/bookings", h.RequestSlot)
		r.Get("/bookings/{bookingId}", h.withBookingID(h.GetBooking))
		r.Post("/bookings/{bookingId}/payment-order", h.withBookingID(h.CreatePaymentOrder))
		r.Post("/bookings/{bookingId}/cancel", h.withBookingID(h.CancelBooking))
		r.Post("/bookings/{bookingId}/approve", h.withBookingID(h.ApproveBooking))
		r.Post("/bookings/{bookingId}/reject", h.withBookingID(h.RejectBooking))
		r.Post("/bookings/{bookingId}/complete", h.withBookingID(h.CompleteBooking))
		r.Post("/payments/verify", h.VerifyPayment)
		r.Post("/payments/orders/{orderId}/cancel", h.CancelPaymentOrder)
	})
}

func (h *BookingsHandler) withBookingID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := pathParam(r, "bookingId")
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		fn(w, r, bookingID)
	}
}

func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", invalidParam(name, err)
	}
	return value, nil
}

// BookingSummary validates a slot request and prices it without reserving.
func (h *BookingsHandler) BookingSummary(w http.ResponseWriter, r *http.Request) {
	var body api.SlotRequest
	if err := h.Validator.Decode(r, &body, false); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	summary, err := h.Service.BookingSummary(r.Context(), middleware.UserID(r.Context()), mapping.ToDomainSlotRequest(&body))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiSummary(summary))
}

// RequestSlot reserves a slot and creates the booking.
func (h *BookingsHandler) RequestSlot(w http.ResponseWriter, r *http.Request) {
	var body api.SlotRequest
	if err := h.Validator.Decode(r, &body, false); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	b, err := h.Service.RequestSlot(r.Context(), middleware.UserID(r.Context()), mapping.ToDomainSlotRequest(&body))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) GetBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	b, err := h.Service.GetBooking(r.Context(), middleware.UserID(r.Context()), bookingID)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

// CreatePaymentOrder opens, or returns the already open, gateway order for a booking.
func (h *BookingsHandler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request, bookingID string) {
	b, err := h.Service.CreatePaymentOrder(r.Context(), middleware.UserID(r.Context()), bookingID)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiPaymentOrder(b, h.KeyID))
}

func (h *BookingsHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var body api.VerifyPaymentRequest
	if err := h.Validator.Decode(r, &body, false); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	b, err := h.Service.VerifyPayment(r.Context(), middleware.UserID(r.Context()), mapping.ToDomainVerifyPayment(&body))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) CancelPaymentOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathParam(r, "orderId")
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	b, err := h.Service.CancelPaymentOrder(r.Context(), middleware.UserID(r.Context()), orderID)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) CancelBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	var body api.ReasonRequest
	if err := h.Validator.Decode(r, &body, true); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	b, err := h.Service.CancelBooking(r.Context(), middleware.UserID(r.Context()), bookingID, body.Reason)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) ApproveBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	b, err := h.Service.ApproveBooking(r.Context(), middleware.UserID(r.Context()), bookingID)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) RejectBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	var body api.ReasonRequest
	if err := h.Validator.Decode(r, &body, true); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	b, err := h.Service.RejectBooking(r.Context(), middleware.UserID(r.Context()), bookingID, body.Reason)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func (h *BookingsHandler) CompleteBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	b, err := h.Service.CompleteBooking(r.Context(), middleware.UserID(r.Context()), bookingID)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, mapping.ToApiBooking(b))
}

func invalidParam(name string, err error) error {
	return apperrors.Validation("Invalid path parameter %s", name).WithCause(err)
}
