package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"lr-validation-backend/internal/domain/apperr"
	"lr-validation-backend/internal/domain/client"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/pkg/clock"

	"go.uber.org/zap"
)

// ObjectStore is the slice of object storage ingestion needs.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	DeletePath(ctx context.Context, storagePath string) error
}

type Config struct {
	MaxBytes       int64
	StorageTimeout time.Duration
	SweepBatch     int

	// DBTimeout bounds each repository call made outside a transaction.
	DBTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxBytes <= 0 {
		c.MaxBytes = document.MaxUploadBytes
	}
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = 30 * time.Second
	}
	if c.DBTimeout <= 0 {
		c.DBTimeout = 5 * time.Second
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = 100
	}
	return c
}

func (u *Usecase) dbCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.cfg.DBTimeout)
}

type Usecase struct {
	clients client.Repository
	docs    document.Repository
	store   ObjectStore
	stamps  *clock.Millis
	now     func() time.Time
	cfg     Config
}

func NewUsecase(clients client.Repository, docs document.Repository, store ObjectStore, cfg Config) *Usecase {
	return &Usecase{
		clients: clients,
		docs:    docs,
		store:   store,
		stamps:  clock.NewMillis(),
		now:     time.Now,
		cfg:     cfg.withDefaults(),
	}
}

func (u *Usecase) checkUpload(op string, up Upload) error {
	if strings.TrimSpace(up.FileName) == "" {
		return apperr.Validation(op, "file name is required", "file")
	}
	if up.ContentType != document.AcceptedContentType {
		return apperr.Validation(op, fmt.Sprintf("content type %q not accepted, want %s", up.ContentType, document.AcceptedContentType), "file")
	}
	if up.Size <= 0 {
		return apperr.Validation(op, "file is empty", "file")
	}
	if up.Size > u.cfg.MaxBytes {
		return apperr.Validation(op, fmt.Sprintf("file is %d bytes, limit is %d", up.Size, u.cfg.MaxBytes), "file")
	}
	if up.Body == nil {
		return apperr.Validation(op, "file body is missing", "file")
	}
	return nil
}

// objectKey is {clientId}/{millis}_{baseName}; the stamp is unique per process.
func (u *Usecase) objectKey(clientID uint64, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	return fmt.Sprintf("%d/%d_%s", clientID, u.stamps.Next(), base)
}

// Ingest stores an uploaded Lorry Receipt and records it as Pending_Validation.
//
// The row is written first as Pending_Upload, then the object, then the row
// is flipped. A storage failure removes the row; a failed flip leaves the row
// for Sweep and reports the storage path.
func (u *Usecase) Ingest(ctx context.Context, up Upload, clientID uint64, branchID *uint64) (*DocumentDTO, error) {
	const op = "ingest.Ingest"
	if err := u.checkUpload(op, up); err != nil {
		return nil, err
	}
	if err := client.CheckScope(ctx, u.clients, op, clientID, branchID); err != nil {
		return nil, err
	}

	key := u.objectKey(clientID, up.FileName)
	now := u.now().UTC()
	d := &document.Document{
		ClientID:       clientID,
		BranchID:       branchID,
		DocumentNumber: document.DeriveNumber(up.FileName),
		TripDate:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		StoragePath:    u.store.Bucket() + "/" + key,
		State:          document.StatePendingUpload,
	}
	cctx, cancel := u.dbCtx(ctx)
	err := u.docs.Create(cctx, d)
	cancel()
	if err != nil {
		return nil, apperr.FromRepo(op, "document", err)
	}

	sctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	_, err = u.store.Put(sctx, key, up.Body, up.ContentType)
	cancel()
	if err != nil {
		u.dropProvisional(ctx, d)
		return nil, apperr.Storage(op, err)
	}

	actx, cancel := u.dbCtx(ctx)
	ok, err := u.docs.AdvanceState(actx, d.ID, document.StatePendingUpload, document.StatePendingValidation)
	cancel()
	if err == nil && !ok {
		err = errors.New("provisional row no longer pending upload")
	}
	if err != nil {
		zap.L().Error("ingest: object stored but document not committed",
			zap.Uint64("document_id", d.ID),
			zap.String("storage_path", d.StoragePath),
			zap.Error(err),
		)
		return nil, apperr.OrphanedObject(op, d.StoragePath, err)
	}
	d.State = document.StatePendingValidation

	zap.L().Info("document ingested",
		zap.Uint64("document_id", d.ID),
		zap.Uint64("client_id", clientID),
		zap.String("storage_path", d.StoragePath),
	)
	dto := ToDTO(d)
	return &dto, nil
}

// dropProvisional runs even when ctx is already done (a timed-out PUT).
func (u *Usecase) dropProvisional(ctx context.Context, d *document.Document) {
	cctx, cancel := u.dbCtx(context.WithoutCancel(ctx))
	defer cancel()
	if err := u.docs.DeleteProvisional(cctx, d.ID); err != nil {
		zap.L().Warn("ingest: provisional row left for sweep",
			zap.Uint64("document_id", d.ID),
			zap.String("storage_path", d.StoragePath),
			zap.Error(err),
		)
	}
}

// Sweep removes Pending_Upload rows older than olderThan together with any
// object stored at their path. Safe to run repeatedly and concurrently with Ingest
// as long as olderThan exceeds the storage timeout.
func (u *Usecase) Sweep(ctx context.Context, olderThan time.Duration) (SweepResult, error) {
	const op = "ingest.Sweep"
	var res SweepResult
	cutoff := u.now().Add(-olderThan)

	for {
		lctx, cancel := u.dbCtx(ctx)
		stale, err := u.docs.ListStale(lctx, cutoff, u.cfg.SweepBatch)
		cancel()
		if err != nil {
			return res, apperr.FromRepo(op, "documents", err)
		}
		removed := 0
		for i := range stale {
			d := &stale[i]
			res.Scanned++
			if err := u.sweepOne(ctx, d); err != nil {
				res.Failed++
				zap.L().Warn("sweep: remove provisional document",
					zap.Uint64("document_id", d.ID),
					zap.String("storage_path", d.StoragePath),
					zap.Error(err),
				)
				continue
			}
			removed++
		}
		res.Removed += removed
		if len(stale) < u.cfg.SweepBatch || removed == 0 {
			break
		}
	}
	if res.Scanned > 0 {
		zap.L().Info("sweep finished",
			zap.Int("scanned", res.Scanned),
			zap.Int("removed", res.Removed),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// sweepOne deletes the object, then the row; each step has its own deadline.
func (u *Usecase) sweepOne(ctx context.Context, d *document.Document) error {
	sctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	err := u.store.DeletePath(sctx, d.StoragePath)
	cancel()
	if err != nil {
		return err
	}
	dctx, cancel := u.dbCtx(ctx)
	defer cancel()
	return u.docs.DeleteProvisional(dctx, d.ID)
}

func (u *Usecase) Get(ctx context.Context, documentID uint64) (*DocumentDTO, error) {
	d, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperr.FromRepo("ingest.Get", "document", err)
	}
	dto := ToDTO(d)
	return &dto, nil
}

// List returns committed documents, newest first.
func (u *Usecase) List(ctx context.Context, in ListInput) ([]DocumentDTO, error) {
	const op = "ingest.List"
	state := document.State(in.State)
	switch state {
	case "", document.StatePendingValidation, document.StateValidated:
	default:
		return nil, apperr.Validation(op, fmt.Sprintf("unknown state %q", in.State), "state")
	}
	if in.Limit < 0 || in.Limit > 500 {
		return nil, apperr.Validation(op, "limit must be between 0 and 500", "limit")
	}
	rows, err := u.docs.List(ctx, document.ListFilter{
		ClientID: in.ClientID,
		BranchID: in.BranchID,
		State:    state,
		Limit:    in.Limit,
	})
	if err != nil {
		return nil, apperr.FromRepo(op, "documents", err)
	}
	out := make([]DocumentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToDTO(&rows[i]))
	}
	return out, nil
}
