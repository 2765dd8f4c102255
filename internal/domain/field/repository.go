package field

import "context"

type Repository interface {
	// CreateBatch inserts fields in slice order; callers run it inside a tx for atomicity.
	CreateBatch(ctx context.Context, fields []*TemplateField) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*TemplateField, error)

	// ListScope returns fields declared at exactly (clientID, branchID); nil branch = base fields.
	ListScope(ctx context.Context, clientID uint64, branchID *uint64) ([]TemplateField, error)

	// ListForResolution returns base fields plus, when branchID is set, that branch's fields.
	ListForResolution(ctx context.Context, clientID uint64, branchID *uint64) ([]TemplateField, error)
}
