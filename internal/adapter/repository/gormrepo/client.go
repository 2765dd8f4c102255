package gormrepo

import (
	"context"

	clientDomain "lr-validation-backend/internal/domain/client"

	"gorm.io/gorm"
)

type ClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) GetClient(ctx context.Context, id uint64) (*clientDomain.Client, error) {
	var out clientDomain.Client
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ClientRepository) GetBranch(ctx context.Context, clientID, branchID uint64) (*clientDomain.Branch, error) {
	var out clientDomain.Branch
	res := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", branchID, clientID).
		First(&out)
	return &out, res.Error
}
