package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)

		b, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p2"}, Notes: " left-handed batsman "})

		require.NoError(t, err)
		assert.Equal(t, models.SLOT_BOOKED, b.Status)
		assert.Equal(t, models.PaymentNotInitiated, b.Payment.Status)
		assert.Equal(t, "BK-2026-000001", b.Reference)
		assert.Equal(t, "left-handed batsman", b.Notes)
		assert.Equal(t, "center1", b.CenterID)
		assert.True(t, b.Amount.Equal(money.MustAmount("1180.00")))
		assert.True(t, b.PriceBreakdown.BatchAmount.Equal(money.MustAmount("1080.00")))
		assert.Equal(t, 2, b.PriceBreakdown.ParticipantCount)
		assert.Nil(t, b.Commission)
		assert.Equal(t, 2, f.store.Occupancy("batch1"))

		stored, err := f.store.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Reference, stored.Reference)

		requests := f.tasks.notifications(notify.TypeSlotRequested)
		require.Len(t, requests, 3)
		recipients := []notify.RecipientType{requests[0].RecipientType, requests[1].RecipientType, requests[2].RecipientType}
		assert.ElementsMatch(t, []notify.RecipientType{notify.RecipientAcademy, notify.RecipientUser, notify.RecipientRole}, recipients)
	})

	t.Run("References Increase", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1"}})
		require.NoError(t, err)
		second, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p2"}})
		require.NoError(t, err)

		assert.Equal(t, "BK-2026-000001", first.Reference)
		assert.Equal(t, "BK-2026-000002", second.Reference)
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		f := newFixture(t)
		batch, _ := f.store.GetBatch(ctx, "batch1")
		batch.Capacity = models.Capacity{Max: intPtr(5)}
		f.store.PutBatch(*batch)
		others := f.addUser("user2", 4)
		_, err := f.svc.RequestSlot(ctx, "user2", SlotRequest{BatchID: "batch1", ParticipantIDs: others})
		require.NoError(t, err)

		_, err = f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p2"}})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Insufficient slots available. Only 1 slot(s) remaining. Requested: 2", appErr.Message)
		assert.Equal(t, 4, f.store.Occupancy("batch1"))
	})

	t.Run("Ineligible Participant", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutParticipant(models.ParticipantForBooking{ID: "p9", UserID: "user1", Name: "Vikram", DateOfBirth: testNow.AddDate(-17, 0, 0)})

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p9"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.ErrorContains(t, err, "Vikram")
		assert.ErrorContains(t, err, "8-14")
		assert.Equal(t, 0, f.store.Occupancy("batch1"))
	})

	t.Run("Already Enrolled", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1"}})
		require.NoError(t, err)

		_, err = f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p3", "p1"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.ErrorContains(t, err, "already enrolled in this batch: Asha")
		assert.Equal(t, 1, f.store.Occupancy("batch1"))
	})

	t.Run("Legacy Booking Blocks Enrollment", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutBooking(&models.Booking{ID: "legacy", UserID: "user1", BatchID: "batch1", Status: models.PAYMENT_PENDING, ParticipantIDs: []string{"p2"}})

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p2"}})

		assert.ErrorContains(t, err, "Ravi")
	})

	t.Run("Participant Not Found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "ghost"}})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorContains(t, err, "ghost")
	})

	t.Run("Participant Of Another User", func(t *testing.T) {
		f := newFixture(t)
		others := f.addUser("user2", 1)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: others})

		assert.ErrorIs(t, err, apperrors.ErrAuthorization)
	})

	t.Run("Batch Not Found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "nope", ParticipantIDs: []string{"p1"}})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Unpublished Batch", func(t *testing.T) {
		f := newFixture(t)
		batch, _ := f.store.GetBatch(ctx, "batch1")
		batch.IsPublished = false
		f.store.PutBatch(*batch)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Unapproved Academy", func(t *testing.T) {
		f := newFixture(t)
		academy, _ := f.store.GetAcademy(ctx, "center1")
		academy.IsApproved = false
		f.store.PutAcademy(*academy)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Duplicate Participant IDs", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p1"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("No Participants", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1"})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestRequestSlotConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	batch, _ := f.store.GetBatch(ctx, "batch1")
	batch.Capacity = models.Capacity{Max: intPtr(7)}
	f.store.PutBatch(*batch)

	const callers = 30
	participants := make([][]string, callers)
	for i := range participants {
		participants[i] = f.addUser(fmt.Sprintf("racer%d", i), 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.RequestSlot(ctx, fmt.Sprintf("racer%d", i), SlotRequest{BatchID: "batch1", ParticipantIDs: participants[i]})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 7, succeeded)
	assert.Equal(t, 7, f.store.Occupancy("batch1"))
	active, err := f.store.ListActiveBookingsByBatch(ctx, "batch1")
	require.NoError(t, err)
	assert.Len(t, active, 7)
}

// untrackedStore records the untracked occupancy each reservation was given.
type untrackedStore struct {
	*memory.Store
	seen []int
}

func (u *untrackedStore) ReserveSlot(ctx context.Context, b *models.Booking, c models.Capacity, untracked int) error {
	u.seen = append(u.seen, untracked)
	return u.Store.ReserveSlot(ctx, b, c, untracked)
}

func TestRequestSlotWithLegacyBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("Legacy Occupancy Reaches The Store", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutBooking(&models.Booking{ID: "legacy", UserID: "other", BatchID: "batch1", Status: models.PENDING, ParticipantIDs: []string{"x1", "x2", "x3"}})
		store := &untrackedStore{Store: f.store}
		f.svc.bookings = store

		_, err := f.svc.RequestSlot(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1"}})

		require.NoError(t, err)
		assert.Equal(t, []int{3}, store.seen)
	})

	t.Run("Concurrent Requests Never Oversell", func(t *testing.T) {
		f := newFixture(t)
		batch, _ := f.store.GetBatch(ctx, "batch1")
		batch.Capacity = models.Capacity{Max: intPtr(7)}
		f.store.PutBatch(*batch)
		f.store.PutBooking(&models.Booking{ID: "legacy1", UserID: "other", BatchID: "batch1", Status: models.PAYMENT_PENDING, ParticipantIDs: []string{"x1", "x2"}})
		f.store.PutBooking(&models.Booking{ID: "legacy2", UserID: "other", BatchID: "batch1", Status: models.REQUESTED, ParticipantIDs: []string{"x3"}})

		const callers = 20
		participants := make([][]string, callers)
		for i := range participants {
			participants[i] = f.addUser(fmt.Sprintf("racer%d", i), 1)
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := f.svc.RequestSlot(ctx, fmt.Sprintf("racer%d", i), SlotRequest{BatchID: "batch1", ParticipantIDs: participants[i]}); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 4, succeeded)
		active, err := f.store.ListActiveBookingsByBatch(ctx, "batch1")
		require.NoError(t, err)
		total := 0
		for _, b := range active {
			total += b.ParticipantCount()
		}
		assert.Equal(t, 7, total)
	})
}

func TestBookingSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.svc.cfg.TaxEnabled = true

		summary, err := f.svc.BookingSummary(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p2"}})

		require.NoError(t, err)
		assert.True(t, summary.Price.Tax.Equal(money.MustAmount("18.00")))
		assert.True(t, summary.Price.Total.Equal(money.MustAmount("1198.00")))
		assert.Equal(t, 10, summary.RemainingSlots)
		assert.Len(t, summary.Participants, 2)
		assert.Equal(t, 0, f.store.Occupancy("batch1"))
		assert.Empty(t, f.tasks.tasks)
	})

	t.Run("Ineligible", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutParticipant(models.ParticipantForBooking{ID: "p9", UserID: "user1", Name: "Tiny", DateOfBirth: testNow.AddDate(-5, 0, 0)})

		_, err := f.svc.BookingSummary(ctx, "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p9"}})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
