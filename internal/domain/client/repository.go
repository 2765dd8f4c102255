package client

import "context"

type Repository interface {
	GetClient(ctx context.Context, id uint64) (*Client, error)
	// GetBranch returns the branch only if it belongs to clientID.
	GetBranch(ctx context.Context, clientID, branchID uint64) (*Branch, error)
}
