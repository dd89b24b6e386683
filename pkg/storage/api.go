package storage

// ApiStore defines the complete set of operations needed by the booking service.
// It composes other interfaces to provide a clear boundary for the service's data access.
type ApiStore interface {
	BookingStore
	LedgerStore
	CatalogReader
}
