// Package workflow tracks a validated document through the billing
// pipeline. Stages complete in dependency order; each completion is
// serialized on the document's progress row.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lr-validation-backend/internal/domain/apperr"
	domain "lr-validation-backend/internal/domain/workflow"
	"lr-validation-backend/internal/domain/uow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	progress domain.Repository
	tx       uow.UnitOfWork
}

func NewUsecase(progress domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{progress: progress, tx: tx}
}

// notStarted maps a missing progress row to PreconditionFailed: only
// validated documents have one.
func notStarted(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Precondition(op, "document is not validated")
	}
	return apperr.FromRepo(op, "workflow progress", err)
}

func (u *Usecase) Progress(ctx context.Context, documentID uint64) (*Snapshot, error) {
	const op = "workflow.Progress"

	p, err := u.progress.Get(ctx, documentID)
	if err != nil {
		return nil, notStarted(op, err)
	}
	return snapshotOf(p), nil
}

// MarkComplete completes an operator-driven stage. Completing a stage twice
// is a no-op.
func (u *Usecase) MarkComplete(ctx context.Context, documentID uint64, stage domain.Stage) (*Snapshot, error) {
	const op = "workflow.MarkComplete"

	if !stage.Valid() {
		return nil, apperr.Validation(op, fmt.Sprintf("unknown stage %q", stage), "stage")
	}
	if stage.ExternallyTriggered() {
		return nil, apperr.Validation(op, fmt.Sprintf("stage %q is completed by bill generation only", stage), "stage")
	}
	return u.complete(ctx, op, documentID, stage)
}

// CompleteBillGeneration is the hook the bill generator calls when a bill exists.
func (u *Usecase) CompleteBillGeneration(ctx context.Context, documentID uint64) (*Snapshot, error) {
	return u.complete(ctx, "workflow.CompleteBillGeneration", documentID, domain.StageGenerateBill)
}

func (u *Usecase) complete(ctx context.Context, op string, documentID uint64, stage domain.Stage) (*Snapshot, error) {
	var out *Snapshot
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Workflow.GetForUpdate(ctx, documentID)
		if err != nil {
			return notStarted(op, err)
		}
		if p.Completed.Has(stage) {
			out = snapshotOf(p)
			return nil
		}
		if missing := p.Completed.MissingBefore(stage); len(missing) > 0 {
			names := make([]string, len(missing))
			for i, m := range missing {
				names[i] = string(m)
			}
			return apperr.Precondition(op, fmt.Sprintf("stage %q waits for %s", stage, strings.Join(names, ", ")))
		}

		p.Completed = p.Completed.With(stage)
		if err := r.Workflow.Save(ctx, p); err != nil {
			return apperr.FromRepo(op, "workflow progress", err)
		}
		out = snapshotOf(p)
		return nil
	})
	if err != nil {
		return nil, apperr.FromRepo(op, "workflow progress", err)
	}

	zap.L().Info("workflow stage completed",
		zap.Uint64("document_id", documentID),
		zap.String("stage", string(stage)),
		zap.Int("completed", out.Completed),
	)
	return out, nil
}
