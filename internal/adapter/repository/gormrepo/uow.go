package gormrepo

import (
	"context"
	"time"

	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct {
	db        *gorm.DB
	txTimeout time.Duration
}

type UoWOption func(*GormUoW)

// WithTxTimeout bounds every transaction; database/sql rolls the tx back
// once the deadline passes, so later statements in fn fail.
func WithTxTimeout(d time.Duration) UoWOption {
	return func(u *GormUoW) { u.txTimeout = d }
}

func NewGormUoW(db *gorm.DB, opts ...UoWOption) *GormUoW {
	u := &GormUoW{db: db}
	for _, fn := range opts {
		fn(u)
	}
	return u
}

func (u *GormUoW) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.txTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, u.txTimeout)
}

// Repos returns repositories bound to db (outside any tx).
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Clients:   &ClientRepository{db: db},
		Fields:    &FieldRepository{db: db},
		Documents: &DocumentRepository{db: db},
		Invoices:  &InvoiceRepository{db: db},
		Workflow:  &WorkflowRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	ctx, cancel := u.bound(ctx)
	defer cancel()
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinDocumentTx(ctx context.Context, documentID uint64, fn func(r uow.Repos, d *document.Document) error) error {
	ctx, cancel := u.bound(ctx)
	defer cancel()
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the document row up-front to serialize transitions per document
		d, err := r.Documents.GetByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		return fn(r, d)
	})
}
