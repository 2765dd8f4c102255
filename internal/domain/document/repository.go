package document

import (
	"context"
	"time"
)

type ListFilter struct {
	ClientID *uint64
	BranchID *uint64
	State    State
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, d *Document) error
	// GetByID never returns Pending_Upload rows.
	GetByID(ctx context.Context, id uint64) (*Document, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Document, error)
	List(ctx context.Context, f ListFilter) ([]Document, error)

	// AdvanceState is a compare-and-swap: it moves id from `from` to `to` and
	// reports whether exactly this call made the change.
	AdvanceState(ctx context.Context, id uint64, from, to State) (bool, error)
	UpdateTripDate(ctx context.Context, id uint64, trip time.Time) error

	// ListStale returns Pending_Upload rows created before cutoff.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Document, error)
	DeleteProvisional(ctx context.Context, id uint64) error
}
