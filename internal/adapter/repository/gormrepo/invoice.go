package gormrepo

import (
	"context"

	invDomain "lr-validation-backend/internal/domain/invoice"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) Create(ctx context.Context, inv *invDomain.Invoice) error {
	// JSON columns are never NULL so they always scan back
	if inv.RawExtractedFields == nil {
		inv.RawExtractedFields = datatypes.JSONMap{}
	}
	if inv.CustomData.Data() == nil {
		inv.SetData(invDomain.CustomData{})
	}
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint64) (*invDomain.Invoice, error) {
	var out invDomain.Invoice
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*invDomain.Invoice, error) {
	var out invDomain.Invoice
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *InvoiceRepository) ListByDocument(ctx context.Context, documentID uint64) ([]invDomain.Invoice, error) {
	var out []invDomain.Invoice
	res := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *InvoiceRepository) SaveCustomData(ctx context.Context, inv *invDomain.Invoice) error {
	return r.db.WithContext(ctx).
		Model(&invDomain.Invoice{}).
		Where("id = ?", inv.ID).
		Update("custom_data", inv.CustomData).Error
}
