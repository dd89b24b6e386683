package booking

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/capacity"
	"github.com/chris/academy-booking-core/pkg/eligibility"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type SlotRequest struct {
	BatchID        string
	ParticipantIDs []string
	Notes          string
}

// Summary is the outcome of a dry-run slot request.
type Summary struct {
	Batch          *models.BatchForBooking
	Academy        *models.AcademyForBooking
	Participants   []*models.ParticipantForBooking
	Price          money.Price
	Currency       string
	RemainingSlots int
}

// slotCheck is everything read and validated for one slot request.
type slotCheck struct {
	batch        *models.BatchForBooking
	academy      *models.AcademyForBooking
	participants []*models.ParticipantForBooking
	snapshot     *capacity.Snapshot
	price        money.Price
}

// BookingSummary runs every RequestSlot check and computes the price without reserving.
func (s *Service) BookingSummary(ctx context.Context, userID string, req SlotRequest) (*Summary, error) {
	check, err := s.checkSlot(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Batch:          check.batch,
		Academy:        check.academy,
		Participants:   check.participants,
		Price:          check.price,
		Currency:       s.currency(check.batch),
		RemainingSlots: check.snapshot.Remaining(check.batch.Capacity),
	}, nil
}

// RequestSlot validates the request and atomically reserves capacity for a new
// SLOT_BOOKED booking.
func (s *Service) RequestSlot(ctx context.Context, userID string, req SlotRequest) (*models.Booking, error) {
	check, err := s.checkSlot(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	seq, err := s.bookings.NextBookingSequence(ctx, now.Year())
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to allocate booking reference")
	}

	currency := s.currency(check.batch)
	p := check.price
	b := &models.Booking{
		ID:             uuid.New().String(),
		Reference:      reference(now.Year(), seq),
		UserID:         userID,
		ParticipantIDs: append([]string(nil), req.ParticipantIDs...),
		BatchID:        check.batch.ID,
		CenterID:       check.batch.CenterID,
		SportID:        check.batch.SportID,
		Amount:         p.Total,
		Currency:       currency,
		PriceBreakdown: models.PriceBreakdown{
			AdmissionFee:     check.batch.AdmissionFee,
			BaseFee:          check.batch.EffectiveFee(),
			BatchAmount:      p.BatchAmount,
			PlatformFee:      p.PlatformFee,
			Tax:              p.Tax,
			Total:            p.Total,
			ParticipantCount: p.Participants,
			ComputedAt:       p.ComputedAt,
		},
		Status: models.SLOT_BOOKED,
		Payment: models.Payment{
			Amount:   p.Total,
			Currency: currency,
			Status:   models.PaymentNotInitiated,
		},
		Notes:     strings.TrimSpace(req.Notes),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.bookings.ReserveSlot(ctx, b, check.batch.Capacity, check.snapshot.Untracked); err != nil {
		return nil, s.reservationError(ctx, err, check, len(b.ParticipantIDs))
	}

	s.logger.Info("slot reserved",
		"booking_id", b.ID,
		"reference", b.Reference,
		"batch_id", b.BatchID,
		"participants", len(b.ParticipantIDs),
		"total", b.Amount.String(),
	)
	s.notify(ctx, slotRequestedNotifications(b, check.batch, check.academy))
	s.publish(ctx, b)
	return b, nil
}

func (s *Service) currency(batch *models.BatchForBooking) string {
	if batch.Currency != "" {
		return batch.Currency
	}
	return s.cfg.Currency
}

// reservationError turns a failed atomic reservation into the same errors the
// read-side checks produce.
func (s *Service) reservationError(ctx context.Context, err error, check *slotCheck, requested int) error {
	var conflict *storage.EnrollmentConflict
	switch {
	case errors.As(err, &conflict):
		names := make([]string, 0, len(conflict.ParticipantIDs))
		for _, p := range check.participants {
			for _, id := range conflict.ParticipantIDs {
				if p.ID == id {
					names = append(names, p.Name)
				}
			}
		}
		return capacity.AlreadyEnrolled(names)
	case errors.Is(err, storage.ErrCapacityExceeded):
		remaining := 0
		if bookings, listErr := s.bookings.ListActiveBookingsByBatch(ctx, check.batch.ID); listErr == nil {
			remaining = capacity.NewSnapshot(check.batch.ID, bookings).Remaining(check.batch.Capacity)
		}
		return capacity.InsufficientSlots(remaining, requested)
	case errors.Is(err, storage.ErrDuplicateBooking):
		return apperrors.Conflict("Booking already exists").WithCause(err)
	default:
		return apperrors.Internal(err, "Failed to reserve slot")
	}
}

func validateSlotRequest(req SlotRequest) error {
	if strings.TrimSpace(req.BatchID) == "" {
		return apperrors.Validation("batchId is required")
	}
	if len(req.ParticipantIDs) == 0 {
		return apperrors.Validation("At least one participant is required")
	}
	seen := make(map[string]struct{}, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if strings.TrimSpace(id) == "" {
			return apperrors.Validation("Participant IDs must not be empty")
		}
		if _, dup := seen[id]; dup {
			return apperrors.Validation("Participant %s is listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// checkSlot reads the user, batch, academy, participants and current occupancy
// concurrently, then validates them in a fixed order.
func (s *Service) checkSlot(ctx context.Context, userID string, req SlotRequest) (*slotCheck, error) {
	if err := validateSlotRequest(req); err != nil {
		return nil, err
	}

	var (
		user         *models.UserForBooking
		batch        *models.BatchForBooking
		academy      *models.AcademyForBooking
		participants []*models.ParticipantForBooking
		bookings     []*models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.catalog.GetUser(gctx, userID)
		if err != nil {
			return notFoundOr(err, "User")
		}
		user = u
		return nil
	})
	g.Go(func() error {
		b, err := s.catalog.GetBatch(gctx, req.BatchID)
		if err != nil {
			return notFoundOr(err, "Batch")
		}
		a, err := s.catalog.GetAcademy(gctx, b.CenterID)
		if err != nil {
			return notFoundOr(err, "Academy")
		}
		batch, academy = b, a
		return nil
	})
	g.Go(func() error {
		ps, err := s.catalog.GetParticipants(gctx, req.ParticipantIDs)
		if err != nil {
			return apperrors.Internal(err, "Failed to load participants")
		}
		participants = ps
		return nil
	})
	g.Go(func() error {
		bs, err := s.bookings.ListActiveBookingsByBatch(gctx, req.BatchID)
		if err != nil {
			return apperrors.Internal(err, "Failed to load batch occupancy")
		}
		bookings = bs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if user.IsDeleted {
		return nil, apperrors.NotFound("User not found")
	}
	if !user.IsActive {
		return nil, apperrors.Validation("User account is not active")
	}
	if batch.IsDeleted {
		return nil, apperrors.NotFound("Batch not found")
	}
	if !batch.IsPublished || !batch.IsActive {
		return nil, apperrors.Validation("Batch is not available for booking")
	}
	if academy.IsDeleted {
		return nil, apperrors.NotFound("Academy not found")
	}
	if !academy.IsPublished || !academy.IsApproved || !academy.IsActive {
		return nil, apperrors.Validation("Academy is not accepting bookings")
	}

	ordered, err := orderParticipants(userID, req.ParticipantIDs, participants)
	if err != nil {
		return nil, err
	}
	if err := eligibility.Validate(batch, academy, ordered, s.now()); err != nil {
		return nil, err
	}

	snapshot := capacity.NewSnapshot(batch.ID, bookings)
	if err := snapshot.CheckCapacity(batch.Capacity, len(ordered)); err != nil {
		return nil, err
	}
	if err := snapshot.CheckEnrollment(ordered); err != nil {
		return nil, err
	}

	price, err := money.CalculatePrice(money.PriceInput{
		AdmissionFee: batch.AdmissionFee,
		Fee:          batch.EffectiveFee(),
		Participants: len(ordered),
		PlatformFee:  s.cfg.PlatformFee,
		TaxRate:      s.cfg.TaxRate,
		TaxEnabled:   s.cfg.TaxEnabled,
	})
	if err != nil {
		return nil, err
	}

	return &slotCheck{
		batch:        batch,
		academy:      academy,
		participants: ordered,
		snapshot:     snapshot,
		price:        price,
	}, nil
}

// orderParticipants returns the participants in request order, checking that each
// exists and belongs to userID.
func orderParticipants(userID string, ids []string, found []*models.ParticipantForBooking) ([]*models.ParticipantForBooking, error) {
	byID := make(map[string]*models.ParticipantForBooking, len(found))
	for _, p := range found {
		if !p.IsDeleted {
			byID[p.ID] = p
		}
	}

	var missing []string
	ordered := make([]*models.ParticipantForBooking, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, p)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NotFound("Participant(s) not found: %s", strings.Join(missing, ", ")).
			WithDetail("participant_ids", missing)
	}
	for _, p := range ordered {
		if p.UserID != userID {
			return nil, apperrors.Authorization("Participant %s does not belong to you", p.Name).
				WithDetail("participant", p.Name)
		}
	}
	return ordered, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("%s not found", what)
	}
	return apperrors.Internal(err, "Failed to load %s", strings.ToLower(what))
}
