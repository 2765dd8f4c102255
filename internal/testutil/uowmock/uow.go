package uowmock

import (
	"context"
	"errors"

	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinDocumentTxFn func(ctx context.Context, documentID uint64, fn func(r uow.Repos, d *document.Document) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) WithWithinDocumentTx(fn func(context.Context, uint64, func(uow.Repos, *document.Document) error) error) *UoW {
	m.WithinDocumentTxFn = fn
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every tx body directly against repos. WithinDocumentTx
// loads the document through repos.Documents.GetByIDForUpdate the way the
// gorm implementation does.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinDocumentTxFn: func(ctx context.Context, id uint64, fn func(uow.Repos, *document.Document) error) error {
			d, err := repos.Documents.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, d)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinDocumentTx(ctx context.Context, documentID uint64, fn func(r uow.Repos, d *document.Document) error) error {
	if m.WithinDocumentTxFn != nil {
		return m.WithinDocumentTxFn(ctx, documentID, fn)
	}
	return errUnimplemented
}
