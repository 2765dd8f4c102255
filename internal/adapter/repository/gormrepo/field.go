package gormrepo

import (
	"context"

	fieldDomain "lr-validation-backend/internal/domain/field"

	"gorm.io/gorm"
)

type FieldRepository struct{ db *gorm.DB }

func NewFieldRepository(db *gorm.DB) *FieldRepository { return &FieldRepository{db: db} }

func (r *FieldRepository) CreateBatch(ctx context.Context, fields []*fieldDomain.TemplateField) error {
	if len(fields) == 0 {
		return nil
	}
	for _, f := range fields {
		f.BranchScope = fieldDomain.ScopeOf(f.BranchID)
	}
	return r.db.WithContext(ctx).Create(fields).Error
}

func (r *FieldRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&fieldDomain.TemplateField{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FieldRepository) GetByID(ctx context.Context, id uint64) (*fieldDomain.TemplateField, error) {
	var out fieldDomain.TemplateField
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *FieldRepository) ListScope(ctx context.Context, clientID uint64, branchID *uint64) ([]fieldDomain.TemplateField, error) {
	var out []fieldDomain.TemplateField
	res := r.db.WithContext(ctx).
		Where("client_id = ? AND branch_scope = ?", clientID, fieldDomain.ScopeOf(branchID)).
		Order("display_order ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *FieldRepository) ListForResolution(ctx context.Context, clientID uint64, branchID *uint64) ([]fieldDomain.TemplateField, error) {
	q := r.db.WithContext(ctx).Where("client_id = ?", clientID)
	if branchID != nil {
		q = q.Where("(branch_id IS NULL OR branch_id = ?)", *branchID)
	} else {
		q = q.Where("branch_id IS NULL")
	}
	var out []fieldDomain.TemplateField
	res := q.Order("display_order ASC, id ASC").Find(&out)
	return out, res.Error
}
