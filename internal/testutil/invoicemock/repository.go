package invoicemock

import (
	"context"

	domain "lr-validation-backend/internal/domain/invoice"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, inv *domain.Invoice) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Invoice, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Invoice, error)
	ListByDocumentFn   func(ctx context.Context, documentID uint64) ([]domain.Invoice, error)
	SaveCustomDataFn   func(ctx context.Context, inv *domain.Invoice) error
}

func (m *Repo) Create(ctx context.Context, inv *domain.Invoice) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, inv)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Invoice, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Invoice, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByDocument(ctx context.Context, documentID uint64) ([]domain.Invoice, error) {
	if m.ListByDocumentFn != nil {
		return m.ListByDocumentFn(ctx, documentID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveCustomData(ctx context.Context, inv *domain.Invoice) error {
	if m.SaveCustomDataFn != nil {
		return m.SaveCustomDataFn(ctx, inv)
	}
	return nil
}
