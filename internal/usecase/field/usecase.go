package field

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lr-validation-backend/internal/domain/apperr"
	"lr-validation-backend/internal/domain/client"
	domain "lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/uow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	clients client.Repository
	fields  domain.Repository
	uow     uow.UnitOfWork
}

func NewUsecase(clients client.Repository, fields domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{clients: clients, fields: fields, uow: tx}
}

// CreateBatch stores fields atomically; each gets its batch index as display order.
func (u *Usecase) CreateBatch(ctx context.Context, clientID uint64, branchID *uint64, in []NewField) ([]FieldDTO, error) {
	const op = "field.CreateBatch"
	if len(in) == 0 {
		return nil, apperr.Validation(op, "at least one field is required", "fields")
	}

	batch := make([]*domain.TemplateField, 0, len(in))
	seen := make(map[string]int, len(in))
	for i, nf := range in {
		name := strings.TrimSpace(nf.FieldName)
		if name == "" {
			return nil, apperr.Validation(op, "field_name must not be blank", fmt.Sprintf("fields[%d].field_name", i))
		}
		src := nf.FieldKey
		if strings.TrimSpace(src) == "" {
			src = name
		}
		key := domain.Slug(src)
		if key == "" {
			return nil, apperr.Validation(op, "field_key has no usable characters", fmt.Sprintf("fields[%d].field_key", i))
		}
		if j, dup := seen[key]; dup {
			return nil, apperr.Validation(op, fmt.Sprintf("duplicate field_key %q (fields %d and %d)", key, j, i), fmt.Sprintf("fields[%d].field_key", i))
		}
		seen[key] = i

		pod := domain.PodRequirement(nf.PodRequirement)
		if pod == "" {
			pod = domain.PodNotApplicable
		}
		if !pod.Valid() {
			return nil, apperr.Validation(op, fmt.Sprintf("unknown pod_requirement %q", nf.PodRequirement), fmt.Sprintf("fields[%d].pod_requirement", i))
		}

		batch = append(batch, &domain.TemplateField{
			ClientID:       clientID,
			BranchID:       branchID,
			FieldName:      name,
			FieldKey:       key,
			DisplayOrder:   i,
			PodRequirement: pod,
		})
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := client.CheckScope(ctx, r.Clients, op, clientID, branchID); err != nil {
			return err
		}
		existing, err := r.Fields.ListScope(ctx, clientID, branchID)
		if err != nil {
			return apperr.FromRepo(op, "template fields", err)
		}
		var taken []string
		for _, f := range existing {
			if _, dup := seen[f.FieldKey]; dup {
				taken = append(taken, f.FieldKey)
			}
		}
		if len(taken) > 0 {
			return apperr.Validation(op, "field_key already defined in this scope", taken...)
		}
		if err := r.Fields.CreateBatch(ctx, batch); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Validation(op, "field_key already defined in this scope")
			}
			return apperr.FromRepo(op, "template field", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]FieldDTO, 0, len(batch))
	for _, f := range batch {
		out = append(out, toDTO(*f))
	}
	zap.L().Info("template fields created",
		zap.Uint64("client_id", clientID),
		zap.Uint64p("branch_id", branchID),
		zap.Int("count", len(out)),
	)
	return out, nil
}

func (u *Usecase) Delete(ctx context.Context, fieldID uint64) error {
	const op = "field.Delete"
	if err := u.fields.Delete(ctx, fieldID); err != nil {
		return apperr.FromRepo(op, "template field", err)
	}
	return nil
}

// List returns the registry rows declared at exactly this scope.
func (u *Usecase) List(ctx context.Context, clientID uint64, branchID *uint64) ([]FieldDTO, error) {
	const op = "field.List"
	if err := client.CheckScope(ctx, u.clients, op, clientID, branchID); err != nil {
		return nil, err
	}
	rows, err := u.fields.ListScope(ctx, clientID, branchID)
	if err != nil {
		return nil, apperr.FromRepo(op, "template fields", err)
	}
	return toDTOs(rows), nil
}

// Resolve returns the effective field set for data entry at (clientID, branchID).
func (u *Usecase) Resolve(ctx context.Context, clientID uint64, branchID *uint64) ([]FieldDTO, error) {
	const op = "field.Resolve"
	if err := client.CheckScope(ctx, u.clients, op, clientID, branchID); err != nil {
		return nil, err
	}
	rows, err := u.fields.ListForResolution(ctx, clientID, branchID)
	if err != nil {
		return nil, apperr.FromRepo(op, "template fields", err)
	}
	return toDTOs(domain.Resolve(rows)), nil
}
