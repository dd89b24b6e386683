package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(id string, participants ...string) *models.Booking {
	return &models.Booking{
		ID:             id,
		BatchID:        "batch1",
		ParticipantIDs: participants,
		Status:         models.SLOT_BOOKED,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
	}
}

func limit(n int) models.Capacity { return models.Capacity{Max: &n} }

func TestReserveSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := New()

		require.NoError(t, s.ReserveSlot(ctx, newBooking("b1", "p1", "p2"), limit(10), 0))

		assert.Equal(t, 2, s.Occupancy("batch1"))
		stored, err := s.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, stored.SlotHeld)
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		s := New()
		require.NoError(t, s.ReserveSlot(ctx, newBooking("b1", "p1", "p2", "p3", "p4"), limit(5), 0))

		err := s.ReserveSlot(ctx, newBooking("b2", "p5", "p6"), limit(5), 0)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		assert.Equal(t, 4, s.Occupancy("batch1"))
		_, err = s.GetBooking(ctx, "b2")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Already Enrolled", func(t *testing.T) {
		s := New()
		require.NoError(t, s.ReserveSlot(ctx, newBooking("b1", "p1"), models.Capacity{}, 0))

		err := s.ReserveSlot(ctx, newBooking("b2", "p2", "p1"), models.Capacity{}, 0)

		assert.ErrorIs(t, err, storage.ErrAlreadyEnrolled)
		assert.Equal(t, 1, s.Occupancy("batch1"))
	})

	t.Run("Concurrent Requests Never Oversell", func(t *testing.T) {
		s := New()
		const capacity = 7
		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.ReserveSlot(ctx, newBooking(fmt.Sprintf("b%d", i), fmt.Sprintf("p%d", i), fmt.Sprintf("q%d", i)), limit(capacity), 0)
			}(i)
		}
		wg.Wait()

		active, err := s.ListActiveBookingsByBatch(ctx, "batch1")
		require.NoError(t, err)
		total := 0
		for _, b := range active {
			total += b.ParticipantCount()
		}
		assert.LessOrEqual(t, total, capacity)
		assert.Equal(t, total, s.Occupancy("batch1"))
		assert.Equal(t, 6, total)
	})

	t.Run("Untracked Rows Count Against Capacity", func(t *testing.T) {
		s := New()
		s.PutBooking(&models.Booking{ID: "legacy", BatchID: "batch1", Status: models.PENDING, ParticipantIDs: []string{"l1", "l2", "l3", "l4"}})

		err := s.ReserveSlot(ctx, newBooking("b1", "p1", "p2"), limit(5), 0)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		assert.NoError(t, s.ReserveSlot(ctx, newBooking("b2", "p3"), limit(5), 0))
	})

	t.Run("Caller Untracked Count Is Honoured", func(t *testing.T) {
		s := New()

		err := s.ReserveSlot(ctx, newBooking("b1", "p1", "p2"), limit(5), 4)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		assert.Equal(t, 0, s.Occupancy("batch1"))
	})

	t.Run("Concurrent Requests With Legacy Rows Never Oversell", func(t *testing.T) {
		s := New()
		s.PutBooking(&models.Booking{ID: "legacy1", BatchID: "batch1", Status: models.PAYMENT_PENDING, ParticipantIDs: []string{"l1", "l2"}})
		s.PutBooking(&models.Booking{ID: "legacy2", BatchID: "batch1", Status: models.CONFIRMED, ParticipantIDs: []string{"l3"}})
		const capacity = 7
		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.ReserveSlot(ctx, newBooking(fmt.Sprintf("b%d", i), fmt.Sprintf("p%d", i)), limit(capacity), 0)
			}(i)
		}
		wg.Wait()

		active, err := s.ListActiveBookingsByBatch(ctx, "batch1")
		require.NoError(t, err)
		total := 0
		for _, b := range active {
			total += b.ParticipantCount()
		}
		assert.Equal(t, capacity, total)
		assert.Equal(t, 4, s.Occupancy("batch1"))
	})
}

func TestReleaseSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Locks", func(t *testing.T) {
		s := New()
		b := newBooking("b1", "p1")
		require.NoError(t, s.ReserveSlot(ctx, b, limit(1), 0))

		b.Status = models.CANCELLED
		require.NoError(t, s.ReleaseSlot(ctx, b))

		assert.Equal(t, 0, s.Occupancy("batch1"))
		assert.Equal(t, int64(2), b.Version)
		assert.NoError(t, s.ReserveSlot(ctx, newBooking("b2", "p1"), limit(1), 0))
	})

	t.Run("Stale Version Fails", func(t *testing.T) {
		s := New()
		b := newBooking("b1", "p1")
		require.NoError(t, s.ReserveSlot(ctx, b, limit(1), 0))
		stale := b.Clone()
		b.Notes = "updated"
		require.NoError(t, s.UpdateBooking(ctx, b))

		stale.Status = models.CANCELLED
		err := s.ReleaseSlot(ctx, stale)

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
		assert.Equal(t, 1, s.Occupancy("batch1"))
	})
}

func TestUpsertTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := &models.Transaction{BookingID: "b1", OrderID: "o1", Amount: money.MustAmount("10"), Status: models.PaymentInitiated}

	first, err := s.UpsertTransaction(ctx, tx)
	require.NoError(t, err)

	success := *tx
	success.Status = models.PaymentSuccess
	success.PaymentID = "pay_1"
	second, err := s.UpsertTransaction(ctx, &success)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	failed := *tx
	failed.Status = models.PaymentFailed
	third, err := s.UpsertTransaction(ctx, &failed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, third.Status)

	rows, err := s.ListTransactionsByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreatePayout(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.ReserveSlot(ctx, newBooking("b1", "p1"), models.Capacity{}, 0))
	payout := &models.Payout{BookingID: "b1", TransactionID: "t1", Status: models.PayoutPending}

	require.NoError(t, s.CreatePayout(ctx, payout))
	assert.ErrorIs(t, s.CreatePayout(ctx, payout), storage.ErrPayoutExists)

	b, err := s.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPending, b.PayoutStatus)
	assert.Len(t, s.Payouts(), 1)
}
