package gormrepo

import (
	"context"
	"time"

	docDomain "lr-validation-backend/internal/domain/document"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 100

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *docDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uint64) (*docDomain.Document, error) {
	var out docDomain.Document
	res := r.db.WithContext(ctx).
		Where("id = ? AND state <> ?", id, docDomain.StatePendingUpload).
		First(&out)
	return &out, res.Error
}

// GetByIDForUpdate row-locks the document for the rest of the tx.
func (r *DocumentRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*docDomain.Document, error) {
	var out docDomain.Document
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND state <> ?", id, docDomain.StatePendingUpload).
		First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) List(ctx context.Context, f docDomain.ListFilter) ([]docDomain.Document, error) {
	q := r.db.WithContext(ctx).Where("state <> ?", docDomain.StatePendingUpload)
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []docDomain.Document
	res := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) AdvanceState(ctx context.Context, id uint64, from, to docDomain.State) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&docDomain.Document{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]any{"state": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DocumentRepository) UpdateTripDate(ctx context.Context, id uint64, trip time.Time) error {
	return r.db.WithContext(ctx).
		Model(&docDomain.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"trip_date": trip, "updated_at": time.Now().UTC()}).Error
}

func (r *DocumentRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]docDomain.Document, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []docDomain.Document
	res := r.db.WithContext(ctx).
		Where("state = ? AND created_at < ?", docDomain.StatePendingUpload, cutoff).
		Order("id ASC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

// DeleteProvisional removes a row only while it is still Pending_Upload.
func (r *DocumentRepository) DeleteProvisional(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, docDomain.StatePendingUpload).
		Delete(&docDomain.Document{}).Error
}
