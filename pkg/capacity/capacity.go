// Package capacity computes batch occupancy and enrollment conflicts from a
// point-in-time read of a batch's bookings. The same checks are enforced again
// atomically by the store when the booking is written.
package capacity

import (
	"sort"
	"strings"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/models"
)

// Snapshot is the occupancy of one batch.
type Snapshot struct {
	BatchID  string
	Occupied int
	// Untracked is the part of Occupied held by rows written before the occupancy counter.
	Untracked int
	// enrolled maps participant ID to the booking holding them.
	enrolled map[string]string
}

// NewSnapshot sums slot-occupying, non-deleted bookings of batchID.
func NewSnapshot(batchID string, bookings []*models.Booking) *Snapshot {
	s := &Snapshot{BatchID: batchID, enrolled: make(map[string]string)}
	for _, b := range bookings {
		if b.BatchID != batchID || b.IsDeleted {
			continue
		}
		if b.Status.OccupiesSlot() {
			s.Occupied += b.ParticipantCount()
			if !b.SlotHeld {
				s.Untracked += b.ParticipantCount()
			}
		}
		if b.Status.BlocksEnrollment() {
			for _, p := range b.ParticipantIDs {
				s.enrolled[p] = b.ID
			}
		}
	}
	return s
}

// Remaining returns the free slots, or -1 when the batch is unlimited.
func (s *Snapshot) Remaining(c models.Capacity) int {
	if c.Max == nil {
		return -1
	}
	r := *c.Max - s.Occupied
	if r < 0 {
		return 0
	}
	return r
}

// CheckCapacity rejects a request for n participants that would exceed c.
func (s *Snapshot) CheckCapacity(c models.Capacity, n int) error {
	if c.Max == nil {
		return nil
	}
	if s.Occupied+n > *c.Max {
		return InsufficientSlots(s.Remaining(c), n)
	}
	return nil
}

// CheckEnrollment rejects the request if any participant already holds a slot in the batch.
func (s *Snapshot) CheckEnrollment(participants []*models.ParticipantForBooking) error {
	var names []string
	for _, p := range participants {
		if _, ok := s.enrolled[p.ID]; ok {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return AlreadyEnrolled(names)
}

// InsufficientSlots builds the capacity error returned to callers.
func InsufficientSlots(remaining, requested int) error {
	return apperrors.Validation("Insufficient slots available. Only %d slot(s) remaining. Requested: %d", remaining, requested).
		WithDetail("remaining", remaining).
		WithDetail("requested", requested)
}

// AlreadyEnrolled builds the enrollment error naming the conflicting participants.
func AlreadyEnrolled(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return apperrors.Validation("The following participant(s) are already enrolled in this batch: %s", strings.Join(sorted, ", ")).
		WithDetail("participants", sorted)
}
