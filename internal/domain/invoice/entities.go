package invoice

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// CustomData holds operator-entered values keyed by resolved field key.
type CustomData map[string]string

// Populated returns the keys whose value is not blank.
func (c CustomData) Populated() []string {
	out := make([]string, 0, len(c))
	for k, v := range c {
		if strings.TrimSpace(v) != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Merge overwrites c's entries with patch's; keys absent from patch stay.
func (c CustomData) Merge(patch CustomData) CustomData {
	out := make(CustomData, len(c)+len(patch))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Table: invoices. Created once by the extraction job; only CustomData changes afterwards.
type Invoice struct {
	ID                 uint64                         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID         uint64                         `gorm:"column:document_id;not null;index;uniqueIndex:ux_invoices_document_number,priority:1" json:"document_id"`
	InvoiceNumber      string                         `gorm:"column:invoice_number;size:128;not null;uniqueIndex:ux_invoices_document_number,priority:2" json:"invoice_number"`
	RawExtractedFields datatypes.JSONMap              `gorm:"column:raw_extracted_fields" json:"raw_extracted_fields"`
	CustomData         datatypes.JSONType[CustomData] `gorm:"column:custom_data" json:"custom_data"`
	CreatedAt          time.Time                      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Data returns the invoice's custom data, never nil.
func (i *Invoice) Data() CustomData {
	d := i.CustomData.Data()
	if d == nil {
		return CustomData{}
	}
	return d
}

func (i *Invoice) SetData(d CustomData) { i.CustomData = datatypes.NewJSONType(d) }
