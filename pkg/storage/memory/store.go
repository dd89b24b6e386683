// Package memory is an in-process implementation of storage.Storage for local
// development and tests. It applies the same conditional-write rules as the
// DynamoDB store under a single mutex.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/google/uuid"
)

type txKey struct{ bookingID, orderID string }

type enrollKey struct{ batchID, participantID string }

// Store keeps every record in maps guarded by mu.
type Store struct {
	mu sync.Mutex

	bookings     map[string]*models.Booking
	occupancy    map[string]int
	enrollments  map[enrollKey]string
	sequences    map[int]int64
	transactions map[txKey]*models.Transaction
	payouts      map[txKey]*models.Payout
	connections  map[string]string

	users          map[string]*models.UserForBooking
	batches        map[string]*models.BatchForBooking
	academies      map[string]*models.AcademyForBooking
	participants   map[string]*models.ParticipantForBooking
	payoutAccounts map[string]*models.PayoutAccount
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		bookings:       make(map[string]*models.Booking),
		occupancy:      make(map[string]int),
		enrollments:    make(map[enrollKey]string),
		sequences:      make(map[int]int64),
		transactions:   make(map[txKey]*models.Transaction),
		payouts:        make(map[txKey]*models.Payout),
		connections:    make(map[string]string),
		users:          make(map[string]*models.UserForBooking),
		batches:        make(map[string]*models.BatchForBooking),
		academies:      make(map[string]*models.AcademyForBooking),
		participants:   make(map[string]*models.ParticipantForBooking),
		payoutAccounts: make(map[string]*models.PayoutAccount),
	}
}

// Seed helpers for catalog projections.

func (s *Store) PutUser(u models.UserForBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

func (s *Store) PutBatch(b models.BatchForBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = &b
}

func (s *Store) PutAcademy(a models.AcademyForBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.academies[a.ID] = &a
}

func (s *Store) PutParticipant(p models.ParticipantForBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = &p
}

func (s *Store) PutPayoutAccount(a models.PayoutAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payoutAccounts[a.CenterID] = &a
}

// PutBooking stores a booking as-is, bypassing reservation. It is meant for seeding
// legacy rows that hold no occupancy or enrollment locks.
func (s *Store) PutBooking(b *models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b.Clone()
}

// Occupancy returns the reserved participant count of a batch.
func (s *Store) Occupancy(batchID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupancy[batchID]
}

// Payouts returns every stored payout.
func (s *Store) Payouts() []models.Payout {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payout, 0, len(s.payouts))
	for _, p := range s.payouts {
		out = append(out, *p)
	}
	return out
}

// Bookings.

func (s *Store) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.IsDeleted {
		return nil, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}
	return b.Clone(), nil
}

func (s *Store) GetBookingByOrderID(_ context.Context, orderID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if !b.IsDeleted && orderID != "" && b.Payment.OrderID == orderID {
			return b.Clone(), nil
		}
	}
	return nil, fmt.Errorf("booking for order %s: %w", orderID, storage.ErrNotFound)
}

func (s *Store) ListActiveBookingsByBatch(_ context.Context, batchID string) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.BatchID == batchID && b.OccupiesSlot() {
			out = append(out, b.Clone())
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) ListBookingsByStatus(_ context.Context, status models.BookingStatus, updatedBefore time.Time) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Booking
	for _, b := range s.bookings {
		if !b.IsDeleted && b.Status == status && b.UpdatedAt.Before(updatedBefore) {
			out = append(out, b.Clone())
		}
	}
	sortBookings(out)
	return out, nil
}

func sortBookings(bookings []*models.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
}

func (s *Store) NextBookingSequence(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[year]++
	return s.sequences[year], nil
}

// ReserveSlot counts untracked rows itself under the lock and uses the larger of that
// and the caller's figure.
func (s *Store) ReserveSlot(_ context.Context, booking *models.Booking, capacity models.Capacity, untracked int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := booking.ParticipantCount()
	if n == 0 {
		return fmt.Errorf("booking has no participants")
	}
	if own := s.untrackedOccupancy(booking.BatchID); own > untracked {
		untracked = own
	}
	if capacity.Max != nil && s.occupancy[booking.BatchID]+untracked+n > *capacity.Max {
		return storage.ErrCapacityExceeded
	}
	conflict := &storage.EnrollmentConflict{BatchID: booking.BatchID}
	for _, p := range booking.ParticipantIDs {
		if _, held := s.enrollments[enrollKey{booking.BatchID, p}]; held {
			conflict.ParticipantIDs = append(conflict.ParticipantIDs, p)
		}
	}
	if len(conflict.ParticipantIDs) > 0 {
		return conflict
	}
	if _, exists := s.bookings[booking.ID]; exists {
		return storage.ErrDuplicateBooking
	}

	booking.SlotHeld = true
	booking.PaymentOrderID = booking.Payment.OrderID
	s.occupancy[booking.BatchID] += n
	for _, p := range booking.ParticipantIDs {
		s.enrollments[enrollKey{booking.BatchID, p}] = booking.ID
	}
	s.bookings[booking.ID] = booking.Clone()
	return nil
}

// untrackedOccupancy sums slot-occupying rows of batchID that hold no counter share.
// It must be called with mu held.
func (s *Store) untrackedOccupancy(batchID string) int {
	total := 0
	for _, b := range s.bookings {
		if b.BatchID == batchID && !b.SlotHeld && b.OccupiesSlot() {
			total += b.ParticipantCount()
		}
	}
	return total
}

// putVersioned must be called with mu held.
func (s *Store) putVersioned(booking *models.Booking) error {
	current, ok := s.bookings[booking.ID]
	if !ok || current.Version != booking.Version {
		return storage.ErrVersionConflict
	}
	booking.Version++
	booking.UpdatedAt = time.Now().UTC()
	booking.PaymentOrderID = booking.Payment.OrderID
	s.bookings[booking.ID] = booking.Clone()
	return nil
}

func (s *Store) UpdateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putVersioned(booking)
}

func (s *Store) ReleaseSlot(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.Status.OccupiesSlot() {
		return fmt.Errorf("booking %s is still %s and cannot release its slot", booking.ID, booking.Status)
	}
	held := booking.SlotHeld
	booking.SlotHeld = false
	if err := s.putVersioned(booking); err != nil {
		booking.SlotHeld = held
		return err
	}
	if !held {
		return nil
	}
	s.occupancy[booking.BatchID] -= booking.ParticipantCount()
	for _, p := range booking.ParticipantIDs {
		key := enrollKey{booking.BatchID, p}
		if s.enrollments[key] == booking.ID {
			delete(s.enrollments, key)
		}
	}
	return nil
}

// Ledger.

func (s *Store) UpsertTransaction(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := txKey{tx.BookingID, tx.OrderID}
	now := time.Now().UTC()
	existing, ok := s.transactions[key]
	if ok && existing.Status == models.PaymentSuccess {
		out := *existing
		return &out, nil
	}

	row := *tx
	if ok {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		if row.PaymentID == "" {
			row.PaymentID = existing.PaymentID
		}
		if row.Method == "" {
			row.Method = existing.Method
		}
		if row.FailureReason == "" {
			row.FailureReason = existing.FailureReason
		}
		if row.ProcessedAt == nil {
			row.ProcessedAt = existing.ProcessedAt
		}
	} else {
		row.ID = uuid.New().String()
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	s.transactions[key] = &row

	out := row
	return &out, nil
}

func (s *Store) GetTransaction(_ context.Context, bookingID, orderID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[txKey{bookingID, orderID}]
	if !ok {
		return nil, fmt.Errorf("transaction for order %s: %w", orderID, storage.ErrNotFound)
	}
	out := *tx
	return &out, nil
}

func (s *Store) ListTransactionsByBooking(_ context.Context, bookingID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for key, tx := range s.transactions {
		if key.bookingID == bookingID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Payouts.

func (s *Store) GetPayout(_ context.Context, bookingID, transactionID string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[txKey{bookingID, transactionID}]
	if !ok {
		return nil, fmt.Errorf("payout for booking %s: %w", bookingID, storage.ErrNotFound)
	}
	out := *p
	return &out, nil
}

func (s *Store) CreatePayout(_ context.Context, payout *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := txKey{payout.BookingID, payout.TransactionID}
	if _, exists := s.payouts[key]; exists {
		return storage.ErrPayoutExists
	}
	booking, ok := s.bookings[payout.BookingID]
	if !ok {
		return fmt.Errorf("booking %s: %w", payout.BookingID, storage.ErrNotFound)
	}
	stored := *payout
	s.payouts[key] = &stored
	booking.PayoutStatus = models.PayoutPending
	booking.Version++
	booking.UpdatedAt = time.Now().UTC()
	return nil
}

// Catalog.

func (s *Store) GetUser(_ context.Context, id string) (*models.UserForBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *Store) GetBatch(_ context.Context, id string) (*models.BatchForBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, storage.ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (s *Store) GetAcademy(_ context.Context, id string) (*models.AcademyForBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.academies[id]
	if !ok {
		return nil, fmt.Errorf("academy %s: %w", id, storage.ErrNotFound)
	}
	out := *a
	return &out, nil
}

func (s *Store) GetParticipants(_ context.Context, ids []string) ([]*models.ParticipantForBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ParticipantForBooking
	for _, id := range ids {
		if p, ok := s.participants[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetPayoutAccount(_ context.Context, centerID string) (*models.PayoutAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.payoutAccounts[centerID]
	if !ok {
		return nil, fmt.Errorf("payout account for %s: %w", centerID, storage.ErrNotFound)
	}
	out := *a
	return &out, nil
}

// WebSocket connections.

func (s *Store) AddConnection(_ context.Context, connectionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = userID
	return nil
}

func (s *Store) RemoveConnection(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

func (s *Store) GetConnections(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for conn, user := range s.connections {
		if user == userID {
			ids = append(ids, conn)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
