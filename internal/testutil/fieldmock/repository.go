package fieldmock

import (
	"context"

	domain "lr-validation-backend/internal/domain/field"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writes are no-ops; unset reads return context.Canceled.
type Repo struct {
	CreateBatchFn       func(ctx context.Context, fields []*domain.TemplateField) error
	DeleteFn            func(ctx context.Context, id uint64) error
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.TemplateField, error)
	ListScopeFn         func(ctx context.Context, clientID uint64, branchID *uint64) ([]domain.TemplateField, error)
	ListForResolutionFn func(ctx context.Context, clientID uint64, branchID *uint64) ([]domain.TemplateField, error)
}

func (m *Repo) CreateBatch(ctx context.Context, fields []*domain.TemplateField) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, fields)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.TemplateField, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListScope(ctx context.Context, clientID uint64, branchID *uint64) ([]domain.TemplateField, error) {
	if m.ListScopeFn != nil {
		return m.ListScopeFn(ctx, clientID, branchID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListForResolution(ctx context.Context, clientID uint64, branchID *uint64) ([]domain.TemplateField, error) {
	if m.ListForResolutionFn != nil {
		return m.ListForResolutionFn(ctx, clientID, branchID)
	}
	return nil, context.Canceled
}
