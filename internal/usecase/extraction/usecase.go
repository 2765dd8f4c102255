// Package extraction drives the external job system that turns a stored
// Lorry Receipt into invoices, and imports those invoices once.
package extraction

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"lr-validation-backend/internal/adapter/gateway"
	"lr-validation-backend/internal/domain/apperr"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/domain/uow"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const tripDateKey = "trip_date"

type Usecase struct {
	docs     document.Repository
	tx       uow.UnitOfWork
	gw       gateway.Client
	pollOpts []gateway.PollOption
}

func NewUsecase(docs document.Repository, tx uow.UnitOfWork, gw gateway.Client, pollOpts ...gateway.PollOption) *Usecase {
	return &Usecase{docs: docs, tx: tx, gw: gw, pollOpts: pollOpts}
}

// upstream classifies a gateway failure: 404 becomes NotFound for what,
// anything else is an Upstream failure.
func upstream(op, what string, err error) error {
	if gateway.StatusOf(err) == http.StatusNotFound {
		return apperr.NotFound(op, what)
	}
	return apperr.Upstream(op, err)
}

// Start queues an extraction job for a document awaiting validation.
func (u *Usecase) Start(ctx context.Context, documentID uint64) (*JobDTO, error) {
	const op = "extraction.Start"

	d, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}
	if d.State != document.StatePendingValidation {
		return nil, apperr.Precondition(op, "document is "+string(d.State))
	}

	job, err := u.gw.StartJob(ctx, documentID)
	if err != nil {
		return nil, upstream(op, "document", err)
	}
	zap.L().Info("extraction job started",
		zap.Uint64("document_id", documentID),
		zap.String("job_id", job.ID.String()),
	)
	return toJobDTO(job), nil
}

// Job returns the current status of a job; rawID must be a UUID.
func (u *Usecase) Job(ctx context.Context, rawID string) (*JobDTO, error) {
	const op = "extraction.Job"

	jobID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.Validation(op, "job id must be a UUID", "job_id")
	}
	job, err := u.gw.GetJob(ctx, jobID)
	if err != nil {
		return nil, upstream(op, "job", err)
	}
	return toJobDTO(job), nil
}

// Await polls a job until it completes or fails. A failed job is an
// Upstream error carrying the job's own message.
func (u *Usecase) Await(ctx context.Context, jobID uuid.UUID) (*JobDTO, error) {
	const op = "extraction.Await"

	job, err := gateway.Poll(ctx, u.gw, jobID, u.pollOpts...)
	if err != nil {
		return nil, upstream(op, "job", err)
	}
	return toJobDTO(job), nil
}

// ImportInvoices stores the invoices the gateway reports for a document.
// Invoice numbers already stored are skipped, so repeated imports are safe.
// Custom data keys outside the document's resolved field set are dropped.
// The gateway is read before the document row is locked.
func (u *Usecase) ImportInvoices(ctx context.Context, documentID uint64) (*ImportResult, error) {
	const op = "extraction.ImportInvoices"

	fetched, err := u.gw.ListInvoices(ctx, documentID)
	if err != nil {
		return nil, upstream(op, "document", err)
	}

	res := &ImportResult{Fetched: len(fetched)}
	err = u.tx.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *document.Document) error {
		if d.State != document.StatePendingValidation {
			return apperr.Precondition(op, "document is "+string(d.State))
		}

		existing, err := r.Invoices.ListByDocument(ctx, documentID)
		if err != nil {
			return apperr.FromRepo(op, "invoices", err)
		}
		rows, err := r.Fields.ListForResolution(ctx, d.ClientID, d.BranchID)
		if err != nil {
			return apperr.FromRepo(op, "fields", err)
		}
		known := make(map[string]struct{}, len(rows))
		for _, k := range field.Keys(field.Resolve(rows)) {
			known[k] = struct{}{}
		}

		seen := make(map[string]struct{}, len(existing)+len(fetched))
		for _, inv := range existing {
			seen[inv.InvoiceNumber] = struct{}{}
		}

		var trip *time.Time
		for _, g := range fetched {
			num := strings.TrimSpace(g.InvoiceNumber)
			if num == "" {
				res.Skipped++
				continue
			}
			if _, dup := seen[num]; dup {
				res.Skipped++
				continue
			}
			seen[num] = struct{}{}

			inv := &invoice.Invoice{
				DocumentID:         documentID,
				InvoiceNumber:      num,
				RawExtractedFields: datatypes.JSONMap(g.RawExtractedFields),
			}
			if data := keepKnown(g.CustomData, known, res); len(data) > 0 {
				inv.SetData(data)
			}
			if err := r.Invoices.Create(ctx, inv); err != nil {
				return apperr.FromRepo(op, "invoice "+num, err)
			}
			res.Created++

			if trip == nil {
				trip = tripDateOf(g.RawExtractedFields)
			}
		}

		if trip != nil && !trip.Equal(d.TripDate) {
			if err := r.Documents.UpdateTripDate(ctx, documentID, *trip); err != nil {
				return apperr.FromRepo(op, "document", err)
			}
			s := trip.Format(time.DateOnly)
			res.TripDate = &s
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}

	zap.L().Info("invoices imported",
		zap.Uint64("document_id", documentID),
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Strings("dropped_keys", res.DroppedKeys),
	)
	return res, nil
}

// keepKnown filters gateway custom data down to resolved keys and records
// every dropped key once on res.
func keepKnown(data map[string]string, known map[string]struct{}, res *ImportResult) invoice.CustomData {
	out := make(invoice.CustomData, len(data))
	for k, v := range data {
		if _, ok := known[k]; ok {
			out[k] = v
			continue
		}
		if !slices.Contains(res.DroppedKeys, k) {
			res.DroppedKeys = append(res.DroppedKeys, k)
		}
	}
	slices.Sort(res.DroppedKeys)
	return out
}

// tripDateOf reads a YYYY-MM-DD trip date from raw extracted fields.
func tripDateOf(raw map[string]any) *time.Time {
	v, ok := raw[tripDateKey].(string)
	if !ok {
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(v), time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
