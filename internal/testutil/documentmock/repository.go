package documentmock

import (
	"context"
	"time"

	domain "lr-validation-backend/internal/domain/document"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writes are no-ops; unset reads (and AdvanceState) return context.Canceled.
type Repo struct {
	CreateFn            func(ctx context.Context, d *domain.Document) error
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.Document, error)
	GetByIDForUpdateFn  func(ctx context.Context, id uint64) (*domain.Document, error)
	ListFn              func(ctx context.Context, f domain.ListFilter) ([]domain.Document, error)
	AdvanceStateFn      func(ctx context.Context, id uint64, from, to domain.State) (bool, error)
	UpdateTripDateFn    func(ctx context.Context, id uint64, trip time.Time) error
	ListStaleFn         func(ctx context.Context, cutoff time.Time, limit int) ([]domain.Document, error)
	DeleteProvisionalFn func(ctx context.Context, id uint64) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Document, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Document, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Document, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) AdvanceState(ctx context.Context, id uint64, from, to domain.State) (bool, error) {
	if m.AdvanceStateFn != nil {
		return m.AdvanceStateFn(ctx, id, from, to)
	}
	return false, context.Canceled
}

func (m *Repo) UpdateTripDate(ctx context.Context, id uint64, trip time.Time) error {
	if m.UpdateTripDateFn != nil {
		return m.UpdateTripDateFn(ctx, id, trip)
	}
	return nil
}

func (m *Repo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]domain.Document, error) {
	if m.ListStaleFn != nil {
		return m.ListStaleFn(ctx, cutoff, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) DeleteProvisional(ctx context.Context, id uint64) error {
	if m.DeleteProvisionalFn != nil {
		return m.DeleteProvisionalFn(ctx, id)
	}
	return nil
}
