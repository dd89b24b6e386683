package storage

import (
	"context"

	"github.com/chris/academy-booking-core/pkg/models"
)

// CatalogReader reads the catalog projections the booking core depends on.
// Catalog data is owned elsewhere and is never written through this interface.
type CatalogReader interface {
	GetUser(ctx context.Context, id string) (*models.UserForBooking, error)
	GetBatch(ctx context.Context, id string) (*models.BatchForBooking, error)
	GetAcademy(ctx context.Context, id string) (*models.AcademyForBooking, error)
	// GetParticipants returns the participants that exist; missing IDs are omitted.
	GetParticipants(ctx context.Context, ids []string) ([]*models.ParticipantForBooking, error)
	// GetPayoutAccount returns ErrNotFound when the academy has no payout account yet.
	GetPayoutAccount(ctx context.Context, centerID string) (*models.PayoutAccount, error)
}
