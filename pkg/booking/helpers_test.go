package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/academy-booking-core/pkg/gateway"
	"github.com/chris/academy-booking-core/pkg/ledger"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/payout"
	"github.com/chris/academy-booking-core/pkg/storage/memory"
	"github.com/chris/academy-booking-core/pkg/tasks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

// recordingSubmitter keeps submitted tasks so tests can inspect or run them.
type recordingSubmitter struct {
	mu    sync.Mutex
	tasks []tasks.Task
}

func (r *recordingSubmitter) Submit(_ context.Context, task tasks.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *recordingSubmitter) ofKind(kind tasks.Kind) []tasks.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []tasks.Task
	for _, t := range r.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

func (r *recordingSubmitter) notifications(kind string) []notify.Request {
	var out []notify.Request
	for _, t := range r.ofKind(tasks.KindNotification) {
		if t.Notification.Metadata.Type == kind {
			out = append(out, *t.Notification)
		}
	}
	return out
}

type fixture struct {
	store   *memory.Store
	gateway *gateway.Fake
	tasks   *recordingSubmitter
	svc     *Service
}

func intPtr(v int) *int { return &v }

func testConfig() Config {
	return Config{
		PlatformFee:           money.MustAmount("100.00"),
		TaxRate:               decimal.NewFromInt(18),
		TaxEnabled:            false,
		DefaultCommissionRate: money.MustRate("0.2"),
		Currency:              "INR",
		GatewayTimeout:        time.Second,
	}
}

// newFixture seeds batch1 (capacity 10, ages 8-14, 540.00 per participant) at
// academy center1 owned by owner1, and user1 with participants p1..p3.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	rate := money.MustRate("0.1")

	store.PutUser(models.UserForBooking{ID: "user1", Name: "Priya", IsActive: true})
	store.PutBatch(models.BatchForBooking{
		ID:            "batch1",
		Name:          "Junior Cricket",
		CenterID:      "center1",
		SportID:       "cricket",
		Capacity:      models.Capacity{Max: intPtr(10)},
		AgeRange:      models.AgeRange{Min: intPtr(8), Max: intPtr(14)},
		AllowDisabled: true,
		AdmissionFee:  money.MustAmount("40.00"),
		BaseFee:       money.MustAmount("500.00"),
		Currency:      "INR",
		IsPublished:   true,
		IsActive:      true,
	})
	store.PutAcademy(models.AcademyForBooking{
		ID:             "center1",
		Name:           "City Sports Academy",
		OwnerUserID:    "owner1",
		AllowDisabled:  true,
		CommissionRate: &rate,
		IsPublished:    true,
		IsApproved:     true,
		IsActive:       true,
	})
	for i, name := range []string{"Asha", "Ravi", "Kiran"} {
		store.PutParticipant(models.ParticipantForBooking{
			ID:          fmt.Sprintf("p%d", i+1),
			UserID:      "user1",
			Name:        name,
			DateOfBirth: testNow.AddDate(-10, 0, 0),
		})
	}
	store.PutPayoutAccount(models.PayoutAccount{ID: "acct1", CenterID: "center1", IsActive: true})

	gw := gateway.NewFake("secret")
	submitter := &recordingSubmitter{}
	svc := NewService(Deps{
		Bookings: store,
		Catalog:  store,
		Gateway:  gw,
		Ledger:   ledger.NewRecorder(store, nil),
		Tasks:    submitter,
	}, testConfig(), nil)
	svc.now = func() time.Time { return testNow }

	return &fixture{store: store, gateway: gw, tasks: submitter, svc: svc}
}

// addUser creates a user with n participants aged 10.
func (f *fixture) addUser(userID string, n int) []string {
	f.store.PutUser(models.UserForBooking{ID: userID, Name: userID, IsActive: true})
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-p%d", userID, i+1)
		f.store.PutParticipant(models.ParticipantForBooking{
			ID:          ids[i],
			UserID:      userID,
			Name:        ids[i],
			DateOfBirth: testNow.AddDate(-10, 0, 0),
		})
	}
	return ids
}

func (f *fixture) requested(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.svc.RequestSlot(context.Background(), "user1", SlotRequest{BatchID: "batch1", ParticipantIDs: []string{"p1", "p2"}})
	require.NoError(t, err)
	return b
}

func (f *fixture) approved(t *testing.T) *models.Booking {
	t.Helper()
	b := f.requested(t)
	b, err := f.svc.ApproveBooking(context.Background(), "owner1", b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) initiated(t *testing.T) *models.Booking {
	t.Helper()
	b := f.approved(t)
	b, err := f.svc.CreatePaymentOrder(context.Background(), "user1", b.ID)
	require.NoError(t, err)
	return b
}

// runPayouts executes every submitted payout task against the store.
func (f *fixture) runPayouts(t *testing.T) {
	t.Helper()
	executor := tasks.NewExecutor(payout.NewInitiator(f.store, f.store, nil), &notify.LogDispatcher{}, nil)
	for _, task := range f.tasks.ofKind(tasks.KindPayout) {
		require.NoError(t, executor.Handle(context.Background(), task))
	}
}
