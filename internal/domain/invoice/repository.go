package invoice

import "context"

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uint64) (*Invoice, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Invoice, error)
	ListByDocument(ctx context.Context, documentID uint64) ([]Invoice, error)
	SaveCustomData(ctx context.Context, inv *Invoice) error
}
