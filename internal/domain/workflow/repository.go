package workflow

import "context"

type Repository interface {
	// Init creates the all-false progress row for a freshly validated document.
	Init(ctx context.Context, documentID uint64) error
	Get(ctx context.Context, documentID uint64) (*Progress, error)
	GetForUpdate(ctx context.Context, documentID uint64) (*Progress, error)
	Save(ctx context.Context, p *Progress) error
}
