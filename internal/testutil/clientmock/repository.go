package clientmock

import (
	"context"

	domain "lr-validation-backend/internal/domain/client"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled.
type Repo struct {
	GetClientFn func(ctx context.Context, id uint64) (*domain.Client, error)
	GetBranchFn func(ctx context.Context, clientID, branchID uint64) (*domain.Branch, error)
}

func (m *Repo) GetClient(ctx context.Context, id uint64) (*domain.Client, error) {
	if m.GetClientFn != nil {
		return m.GetClientFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetBranch(ctx context.Context, clientID, branchID uint64) (*domain.Branch, error) {
	if m.GetBranchFn != nil {
		return m.GetBranchFn(ctx, clientID, branchID)
	}
	return nil, context.Canceled
}

// Known returns a Repo that knows exactly the given client and branches.
// Anything else yields notFound.
func Known(clientID uint64, notFound error, branchIDs ...uint64) *Repo {
	branches := make(map[uint64]bool, len(branchIDs))
	for _, b := range branchIDs {
		branches[b] = true
	}
	return &Repo{
		GetClientFn: func(_ context.Context, id uint64) (*domain.Client, error) {
			if id != clientID {
				return nil, notFound
			}
			return &domain.Client{ID: id, Name: "client"}, nil
		},
		GetBranchFn: func(_ context.Context, cID, bID uint64) (*domain.Branch, error) {
			if cID != clientID || !branches[bID] {
				return nil, notFound
			}
			return &domain.Branch{ID: bID, ClientID: cID, Name: "branch"}, nil
		},
	}
}
