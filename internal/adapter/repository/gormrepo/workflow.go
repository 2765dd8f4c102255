package gormrepo

import (
	"context"
	"time"

	wfDomain "lr-validation-backend/internal/domain/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowRepository struct{ db *gorm.DB }

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository { return &WorkflowRepository{db: db} }

func (r *WorkflowRepository) Init(ctx context.Context, documentID uint64) error {
	return r.db.WithContext(ctx).Create(&wfDomain.Progress{DocumentID: documentID}).Error
}

func (r *WorkflowRepository) Get(ctx context.Context, documentID uint64) (*wfDomain.Progress, error) {
	var out wfDomain.Progress
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) GetForUpdate(ctx context.Context, documentID uint64) (*wfDomain.Progress, error) {
	var out wfDomain.Progress
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		First(&out)
	return &out, res.Error
}

func (r *WorkflowRepository) Save(ctx context.Context, p *wfDomain.Progress) error {
	return r.db.WithContext(ctx).
		Model(&wfDomain.Progress{}).
		Where("document_id = ?", p.DocumentID).
		Updates(map[string]any{"completed": p.Completed, "updated_at": time.Now().UTC()}).Error
}
