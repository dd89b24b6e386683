package cache

import (
	"context"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// Catalog caches batch and academy projections in front of a CatalogReader.
// Users, participants and payout accounts are always read through.
type Catalog struct {
	storage.CatalogReader
	batches   *TTL[string, models.BatchForBooking]
	academies *TTL[string, models.AcademyForBooking]
}

var _ storage.CatalogReader = (*Catalog)(nil)

func NewCatalog(source storage.CatalogReader, ttl time.Duration) *Catalog {
	return &Catalog{
		CatalogReader: source,
		batches:       NewTTL[string, models.BatchForBooking](ttl),
		academies:     NewTTL[string, models.AcademyForBooking](ttl),
	}
}

func (c *Catalog) GetBatch(ctx context.Context, id string) (*models.BatchForBooking, error) {
	b, err := c.batches.GetOrLoad(ctx, id, func(ctx context.Context, id string) (models.BatchForBooking, error) {
		b, err := c.CatalogReader.GetBatch(ctx, id)
		if err != nil {
			return models.BatchForBooking{}, err
		}
		return *b, nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Catalog) GetAcademy(ctx context.Context, id string) (*models.AcademyForBooking, error) {
	a, err := c.academies.GetOrLoad(ctx, id, func(ctx context.Context, id string) (models.AcademyForBooking, error) {
		a, err := c.CatalogReader.GetAcademy(ctx, id)
		if err != nil {
			return models.AcademyForBooking{}, err
		}
		return *a, nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InvalidateBatch must be called when the catalog owner changes a batch.
func (c *Catalog) InvalidateBatch(id string) { c.batches.Invalidate(id) }

// InvalidateAcademy must be called when the catalog owner changes an academy.
func (c *Catalog) InvalidateAcademy(id string) { c.academies.Invalidate(id) }
