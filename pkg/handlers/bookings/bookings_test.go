package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris/academy-booking-core/pkg/api"
	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/booking"
	"github.com/chris/academy-booking-core/pkg/handlers"
	"github.com/chris/academy-booking-core/pkg/handlers/bookings/mocks"
	"github.com/chris/academy-booking-core/pkg/middleware"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*mocks.BookingService, http.Handler) {
	svc := mocks.NewBookingService(t)
	r := chi.NewRouter()
	NewBookingsHandler(svc, handlers.NewValidator(), "rzp_test_key").Routes(r)
	return svc, r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "user1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sampleBooking() *models.Booking {
	total := money.MustAmount("1180.00")
	return &models.Booking{
		ID:             "b1",
		Reference:      "BK-2026-000001",
		UserID:         "user1",
		BatchID:        "batch1",
		CenterID:       "center1",
		ParticipantIDs: []string{"p1", "p2"},
		Amount:         total,
		Currency:       "INR",
		Status:         models.SLOT_BOOKED,
		Payment: models.Payment{
			Amount:    total,
			Currency:  "INR",
			Status:    models.PaymentNotInitiated,
			Signature: "secret-signature",
		},
		CreatedAt: time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC),
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.Error {
	t.Helper()
	var body api.Error
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestRequestSlot(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("RequestSlot", mock.Anything, "user1", booking.SlotRequest{
			BatchID:        "batch1",
			ParticipantIDs: []string{"p1", "p2"},
			Notes:          "left-handed",
		}).Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings", `{"batchId":"batch1","participantIds":["p1","p2"],"notes":"left-handed"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var view api.BookingView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		assert.Equal(t, "BK-2026-000001", view.Reference)
		assert.Equal(t, "1180.00", view.Amount)
		assert.NotContains(t, rr.Body.String(), "secret-signature")
		assert.NotContains(t, rr.Body.String(), "user1")
	})

	t.Run("Missing Participants", func(t *testing.T) {
		_, h := newRouter(t)

		rr := do(h, http.MethodPost, "/bookings", `{"batchId":"batch1","participantIds":[]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, string(apperrors.KindValidation), body.Code)
		assert.Contains(t, body.Message, "participantIds")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		_, h := newRouter(t)

		rr := do(h, http.MethodPost, "/bookings", `{"batchId":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("RequestSlot", mock.Anything, "user1", mock.Anything).
			Return(nil, apperrors.Validation("Insufficient slots available. Only 1 slot(s) remaining. Requested: 2"))

		rr := do(h, http.MethodPost, "/bookings", `{"batchId":"batch1","participantIds":["p1","p2"]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Insufficient slots available. Only 1 slot(s) remaining. Requested: 2", decodeError(t, rr).Message)
	})

	t.Run("Missing Identity", func(t *testing.T) {
		_, h := newRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestBookingSummary(t *testing.T) {
	svc, h := newRouter(t)
	maxSlots := 10
	svc.On("BookingSummary", mock.Anything, "user1", mock.AnythingOfType("booking.SlotRequest")).Return(&booking.Summary{
		Batch:          &models.BatchForBooking{ID: "batch1", Name: "Junior Cricket", Capacity: models.Capacity{Max: &maxSlots}, AdmissionFee: money.MustAmount("40"), BaseFee: money.MustAmount("500")},
		Academy:        &models.AcademyForBooking{ID: "center1", Name: "City Sports Academy"},
		Participants:   []*models.ParticipantForBooking{{ID: "p1", Name: "Asha"}},
		Price:          money.Price{BatchAmount: money.MustAmount("540"), PlatformFee: money.MustAmount("100"), Tax: money.MustAmount("18"), Total: money.MustAmount("658"), Participants: 1},
		Currency:       "INR",
		RemainingSlots: 8,
	}, nil)

	rr := do(h, http.MethodPost, "/bookings/summary", `{"batchId":"batch1","participantIds":["p1"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var view api.SummaryView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "658.00", view.Price.Total)
	assert.Equal(t, "500.00", view.Price.BaseFee)
	require.NotNil(t, view.RemainingSlots)
	assert.Equal(t, 8, *view.RemainingSlots)
	assert.Equal(t, "Asha", view.Participants[0].Name)
}

func TestGetBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("GetBooking", mock.Anything, "user1", "b1").Return(sampleBooking(), nil)

		rr := do(h, http.MethodGet, "/bookings/b1", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("GetBooking", mock.Anything, "user1", "b2").Return(nil, apperrors.Authorization("You are not allowed to access this booking"))

		rr := do(h, http.MethodGet, "/bookings/b2", "")

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Internal Error Is Not Leaked", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("GetBooking", mock.Anything, "user1", "b1").Return(nil, errors.New("dynamodb: throttled on table bookings"))

		rr := do(h, http.MethodGet, "/bookings/b1", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "dynamodb")
	})
}

func TestCreatePaymentOrder(t *testing.T) {
	svc, h := newRouter(t)
	b := sampleBooking()
	b.Status = models.APPROVED
	b.Payment.Status = models.PaymentInitiated
	b.Payment.OrderID = "order_1"
	svc.On("CreatePaymentOrder", mock.Anything, "user1", "b1").Return(b, nil)

	rr := do(h, http.MethodPost, "/bookings/b1/payment-order", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var view api.PaymentOrderView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, api.PaymentOrderView{BookingID: "b1", OrderID: "order_1", Amount: 118000, Currency: "INR", KeyID: "rzp_test_key"}, view)
}

func TestVerifyPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := newRouter(t)
		b := sampleBooking()
		b.Status = models.CONFIRMED
		b.Payment.Status = models.PaymentSuccess
		svc.On("VerifyPayment", mock.Anything, "user1", booking.VerifyPaymentRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}).Return(b, nil)

		rr := do(h, http.MethodPost, "/payments/verify", `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"CONFIRMED"`)
	})

	t.Run("Already Verified", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("VerifyPayment", mock.Anything, "user1", mock.Anything).Return(nil, apperrors.AlreadyVerified("Payment has already been verified"))

		rr := do(h, http.MethodPost, "/payments/verify", `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, string(apperrors.KindAlreadyVerified), decodeError(t, rr).Code)
	})

	t.Run("Missing Signature", func(t *testing.T) {
		_, h := newRouter(t)

		rr := do(h, http.MethodPost, "/payments/verify", `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Message, "razorpay_signature")
	})

	t.Run("Gateway Error", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("VerifyPayment", mock.Anything, "user1", mock.Anything).Return(nil, apperrors.Gateway(errors.New("timeout"), "Unable to verify payment with the payment provider"))

		rr := do(h, http.MethodPost, "/payments/verify", `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.NotContains(t, rr.Body.String(), "timeout")
	})
}

func TestCancelPaymentOrder(t *testing.T) {
	svc, h := newRouter(t)
	b := sampleBooking()
	b.Payment.Status = models.PaymentCancelled
	svc.On("CancelPaymentOrder", mock.Anything, "user1", "order_1").Return(b, nil)

	rr := do(h, http.MethodPost, "/payments/orders/order_1/cancel", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCancelBooking(t *testing.T) {
	t.Run("With Reason", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("CancelBooking", mock.Anything, "user1", "b1", "schedule clash").Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings/b1/cancel", `{"reason":"schedule clash"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Empty Body", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("CancelBooking", mock.Anything, "user1", "b1", "").Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings/b1/cancel", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Paid Booking", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("CancelBooking", mock.Anything, "user1", "b1", "").Return(nil, apperrors.InvalidState("Paid bookings cannot be cancelled here; request a refund instead"))

		rr := do(h, http.MethodPost, "/bookings/b1/cancel", "")

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, string(apperrors.KindInvalidState), decodeError(t, rr).Code)
	})
}

func TestAcademyDecisions(t *testing.T) {
	t.Run("Approve", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("ApproveBooking", mock.Anything, "user1", "b1").Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings/b1/approve", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Reject", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("RejectBooking", mock.Anything, "user1", "b1", "batch full").Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings/b1/reject", `{"reason":"batch full"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Complete", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("CompleteBooking", mock.Anything, "user1", "b1").Return(sampleBooking(), nil)

		rr := do(h, http.MethodPost, "/bookings/b1/complete", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Complete By Non Owner", func(t *testing.T) {
		svc, h := newRouter(t)
		svc.On("CompleteBooking", mock.Anything, "user1", "b1").Return(nil, apperrors.Authorization("Only the academy owner can decide on this booking"))

		rr := do(h, http.MethodPost, "/bookings/b1/complete", "")

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, string(apperrors.KindAuthorization), decodeError(t, rr).Code)
	})
}
