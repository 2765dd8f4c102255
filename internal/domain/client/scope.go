package client

import (
	"context"

	"lr-validation-backend/internal/domain/apperr"
)

// CheckScope fails with NotFound unless the client exists and, when given,
// the branch belongs to it.
func CheckScope(ctx context.Context, repo Repository, op string, clientID uint64, branchID *uint64) error {
	if _, err := repo.GetClient(ctx, clientID); err != nil {
		return apperr.FromRepo(op, "client", err)
	}
	if branchID == nil {
		return nil
	}
	if _, err := repo.GetBranch(ctx, clientID, *branchID); err != nil {
		return apperr.FromRepo(op, "branch", err)
	}
	return nil
}
