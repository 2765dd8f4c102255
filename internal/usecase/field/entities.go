package field

import (
	"time"

	domain "lr-validation-backend/internal/domain/field"
)

type NewField struct {
	FieldName      string `json:"field_name"`
	FieldKey       string `json:"field_key,omitempty"`
	PodRequirement string `json:"pod_requirement,omitempty"`
}

type FieldDTO struct {
	ID             uint64    `json:"id"`
	ClientID       uint64    `json:"client_id"`
	BranchID       *uint64   `json:"branch_id"`
	FieldName      string    `json:"field_name"`
	FieldKey       string    `json:"field_key"`
	DisplayOrder   int       `json:"display_order"`
	PodRequirement string    `json:"pod_requirement"`
	BranchSpecific bool      `json:"branch_specific"`
	CreatedAt      time.Time `json:"created_at"`
}

func toDTO(f domain.TemplateField) FieldDTO {
	return FieldDTO{
		ID:             f.ID,
		ClientID:       f.ClientID,
		BranchID:       f.BranchID,
		FieldName:      f.FieldName,
		FieldKey:       f.FieldKey,
		DisplayOrder:   f.DisplayOrder,
		PodRequirement: string(f.PodRequirement),
		BranchSpecific: f.IsBranchSpecific(),
		CreatedAt:      f.CreatedAt,
	}
}

func toDTOs(in []domain.TemplateField) []FieldDTO {
	out := make([]FieldDTO, 0, len(in))
	for _, f := range in {
		out = append(out, toDTO(f))
	}
	return out
}
