package validation

import (
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/usecase/ingest"
)

type InvoiceDTO struct {
	ID                 uint64            `json:"id"`
	DocumentID         uint64            `json:"document_id"`
	InvoiceNumber      string            `json:"invoice_number"`
	RawExtractedFields map[string]any    `json:"raw_extracted_fields"`
	CustomData         map[string]string `json:"custom_data"`
}

func toInvoiceDTO(inv *invoice.Invoice) InvoiceDTO {
	raw := map[string]any(inv.RawExtractedFields)
	if raw == nil {
		raw = map[string]any{}
	}
	return InvoiceDTO{
		ID:                 inv.ID,
		DocumentID:         inv.DocumentID,
		InvoiceNumber:      inv.InvoiceNumber,
		RawExtractedFields: raw,
		CustomData:         inv.Data(),
	}
}

func toInvoiceDTOs(in []invoice.Invoice) []InvoiceDTO {
	out := make([]InvoiceDTO, len(in))
	for i := range in {
		out[i] = toInvoiceDTO(&in[i])
	}
	return out
}

// FormField is one column of the entry form.
type FormField struct {
	Key            string               `json:"field_key"`
	Name           string               `json:"field_name"`
	DisplayOrder   int                  `json:"display_order"`
	PodRequirement field.PodRequirement `json:"pod_requirement"`
	BranchSpecific bool                 `json:"branch_specific"`
}

func toFormFields(in []field.TemplateField) []FormField {
	out := make([]FormField, len(in))
	for i, f := range in {
		out[i] = FormField{
			Key:            f.FieldKey,
			Name:           f.FieldName,
			DisplayOrder:   f.DisplayOrder,
			PodRequirement: f.PodRequirement,
			BranchSpecific: f.IsBranchSpecific(),
		}
	}
	return out
}

// Form is everything an operator needs to fill in one document.
type Form struct {
	Document ingest.DocumentDTO `json:"document"`
	Fields   []FormField        `json:"fields"`
	Invoices []InvoiceDTO       `json:"invoices"`
	Report   invoice.Report     `json:"completeness"`
}

type ValidateResult struct {
	DocumentID uint64         `json:"document_id"`
	State      document.State `json:"state"`
	Report     invoice.Report `json:"completeness"`
}
