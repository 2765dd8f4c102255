package uow

import (
	"context"

	"lr-validation-backend/internal/domain/client"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/domain/workflow"
)

// Repos are bound to one transaction.
type Repos struct {
	Clients   client.Repository
	Fields    field.Repository
	Documents document.Repository
	Invoices  invoice.Repository
	Workflow  workflow.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the document row first, then pass it in; Pending_Upload rows are not visible
	WithinDocumentTx(ctx context.Context, documentID uint64, fn func(r Repos, d *document.Document) error) error
}
