package workflowmock

import (
	"context"

	domain "lr-validation-backend/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	InitFn         func(ctx context.Context, documentID uint64) error
	GetFn          func(ctx context.Context, documentID uint64) (*domain.Progress, error)
	GetForUpdateFn func(ctx context.Context, documentID uint64) (*domain.Progress, error)
	SaveFn         func(ctx context.Context, p *domain.Progress) error
}

func (m *Repo) Init(ctx context.Context, documentID uint64) error {
	if m.InitFn != nil {
		return m.InitFn(ctx, documentID)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, documentID uint64) (*domain.Progress, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, documentID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetForUpdate(ctx context.Context, documentID uint64) (*domain.Progress, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, documentID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, p *domain.Progress) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
