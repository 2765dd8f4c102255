// Package validation owns the invoice validation state machine: operators
// fill in custom data per invoice, and a document moves to Validated once
// every invoice passes the completeness gate.
package validation

import (
	"context"
	"fmt"
	"sort"

	"lr-validation-backend/internal/adapter/gateway"
	"lr-validation-backend/internal/domain/apperr"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/domain/uow"
	"lr-validation-backend/internal/usecase/ingest"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Mode invoice.Mode
	// Mirror pushes saved data and validations to the job gateway after commit.
	Mirror bool
}

type Usecase struct {
	repos uow.Repos
	tx    uow.UnitOfWork
	gw    gateway.Client
	cfg   Config
}

// NewUsecase wires the state machine. repos serve reads outside a
// transaction; gw may be nil when mirroring is off.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, gw gateway.Client, cfg Config) *Usecase {
	if !cfg.Mode.Valid() {
		cfg.Mode = invoice.ModeCoarse
	}
	return &Usecase{repos: repos, tx: tx, gw: gw, cfg: cfg}
}

func (u *Usecase) mirroring() bool { return u.cfg.Mirror && u.gw != nil }

func resolvedFields(ctx context.Context, fields field.Repository, d *document.Document) ([]field.TemplateField, error) {
	rows, err := fields.ListForResolution(ctx, d.ClientID, d.BranchID)
	if err != nil {
		return nil, err
	}
	return field.Resolve(rows), nil
}

func unknownKeys(data map[string]string, resolved []field.TemplateField) []string {
	known := make(map[string]struct{}, len(resolved))
	for _, f := range resolved {
		known[f.FieldKey] = struct{}{}
	}
	var out []string
	for k := range data {
		if _, ok := known[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// SaveCustomData merges data into an invoice's custom data. Present keys
// overwrite, absent keys are left alone. Every key must be a resolved field
// key of the owning document's scope.
func (u *Usecase) SaveCustomData(ctx context.Context, invoiceID uint64, data map[string]string) (*InvoiceDTO, error) {
	const op = "validation.SaveCustomData"

	if len(data) == 0 {
		return nil, apperr.Validation(op, "custom_data must not be empty", "custom_data")
	}

	// learn the owning document so the document row is locked before the
	// invoice row, the same order Validate takes
	owner, err := u.repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperr.FromRepo(op, "invoice", err)
	}

	var saved invoice.Invoice
	err = u.tx.WithinDocumentTx(ctx, owner.DocumentID, func(r uow.Repos, d *document.Document) error {
		if d.State == document.StateValidated {
			return apperr.Precondition(op, "document is already validated")
		}

		inv, err := r.Invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return apperr.FromRepo(op, "invoice", err)
		}

		resolved, err := resolvedFields(ctx, r.Fields, d)
		if err != nil {
			return apperr.FromRepo(op, "template fields", err)
		}
		if unknown := unknownKeys(data, resolved); len(unknown) > 0 {
			return apperr.Validation(op, "unknown field keys", unknown...)
		}

		inv.SetData(inv.Data().Merge(invoice.CustomData(data)))
		if err := r.Invoices.SaveCustomData(ctx, inv); err != nil {
			return apperr.FromRepo(op, "invoice", err)
		}
		saved = *inv
		return nil
	})
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}

	if u.mirroring() {
		if err := u.gw.PushCustomData(ctx, invoiceID, saved.Data()); err != nil {
			zap.L().Warn("custom data mirror failed",
				zap.Uint64("invoice_id", invoiceID),
				zap.Error(err),
			)
		}
	}

	dto := toInvoiceDTO(&saved)
	return &dto, nil
}

// Invoices lists a document's invoices in creation order.
func (u *Usecase) Invoices(ctx context.Context, documentID uint64) ([]InvoiceDTO, error) {
	const op = "validation.Invoices"

	if _, err := u.repos.Documents.GetByID(ctx, documentID); err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}
	invs, err := u.repos.Invoices.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo(op, "invoices", err)
	}
	return toInvoiceDTOs(invs), nil
}

// Completeness evaluates the validation gate without changing anything.
func (u *Usecase) Completeness(ctx context.Context, documentID uint64) (*invoice.Report, error) {
	const op = "validation.Completeness"

	d, err := u.repos.Documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}
	invs, err := u.repos.Invoices.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo(op, "invoices", err)
	}
	resolved, err := resolvedFields(ctx, u.repos.Fields, d)
	if err != nil {
		return nil, apperr.FromRepo(op, "template fields", err)
	}
	r := invoice.Evaluate(u.cfg.Mode, invs, field.MandatoryKeys(resolved))
	return &r, nil
}

// Validate moves a complete document from Pending_Validation to Validated
// and creates its workflow progress row, all in one transaction.
func (u *Usecase) Validate(ctx context.Context, documentID uint64) (*ValidateResult, error) {
	const op = "validation.Validate"

	var report invoice.Report
	err := u.tx.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *document.Document) error {
		switch d.State {
		case document.StateValidated:
			return apperr.Conflict(op, "document is already validated")
		case document.StatePendingValidation:
		default:
			return apperr.Precondition(op, "document is "+string(d.State))
		}

		invs, err := r.Invoices.ListByDocument(ctx, documentID)
		if err != nil {
			return apperr.FromRepo(op, "invoices", err)
		}
		resolved, err := resolvedFields(ctx, r.Fields, d)
		if err != nil {
			return apperr.FromRepo(op, "template fields", err)
		}
		report = invoice.Evaluate(u.cfg.Mode, invs, field.MandatoryKeys(resolved))
		if !report.Complete {
			if report.InvoiceCount == 0 {
				return apperr.Precondition(op, "document has no invoices")
			}
			return apperr.Precondition(op, fmt.Sprintf("%d of %d invoices are incomplete", len(report.Gaps), report.InvoiceCount))
		}

		won, err := r.Documents.AdvanceState(ctx, documentID, document.StatePendingValidation, document.StateValidated)
		if err != nil {
			return apperr.FromRepo(op, "document", err)
		}
		if !won {
			return apperr.Conflict(op, "document changed state concurrently")
		}
		if err := r.Workflow.Init(ctx, documentID); err != nil {
			return apperr.FromRepo(op, "workflow progress", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}

	zap.L().Info("document validated",
		zap.Uint64("document_id", documentID),
		zap.Int("invoices", report.InvoiceCount),
		zap.String("mode", string(report.Mode)),
	)

	if u.mirroring() {
		if err := u.gw.ValidateDocument(ctx, documentID); err != nil {
			zap.L().Warn("validation mirror failed",
				zap.Uint64("document_id", documentID),
				zap.Error(err),
			)
		}
	}

	return &ValidateResult{DocumentID: documentID, State: document.StateValidated, Report: report}, nil
}

// Form loads the resolved fields, the invoices and the completeness report
// for one document. Fields and invoices are read concurrently.
func (u *Usecase) Form(ctx context.Context, documentID uint64) (*Form, error) {
	const op = "validation.Form"

	d, err := u.repos.Documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}

	var (
		resolved []field.TemplateField
		invs     []invoice.Invoice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := resolvedFields(gctx, u.repos.Fields, d)
		if err != nil {
			return apperr.FromRepo(op, "template fields", err)
		}
		resolved = rows
		return nil
	})
	g.Go(func() error {
		rows, err := u.repos.Invoices.ListByDocument(gctx, documentID)
		if err != nil {
			return apperr.FromRepo(op, "invoices", err)
		}
		invs = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Form{
		Document: ingest.ToDTO(d),
		Fields:   toFormFields(resolved),
		Invoices: toInvoiceDTOs(invs),
		Report:   invoice.Evaluate(u.cfg.Mode, invs, field.MandatoryKeys(resolved)),
	}, nil
}
