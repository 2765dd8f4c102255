package field

import (
	"strings"
	"time"
)

type PodRequirement string

const (
	PodNotApplicable PodRequirement = "NOT_APPLICABLE"
	PodMandatory     PodRequirement = "MANDATORY"
)

func (p PodRequirement) Valid() bool { return p == PodNotApplicable || p == PodMandatory }

// Table: template_fields.
// BranchID == nil marks a client-wide (base) field. BranchScope mirrors BranchID
// with 0 for base so the unique index also covers base fields (NULLs never collide).
type TemplateField struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClientID       uint64         `gorm:"column:client_id;not null;uniqueIndex:ux_template_fields_scope_key,priority:1;index" json:"client_id"`
	BranchID       *uint64        `gorm:"column:branch_id;index" json:"branch_id"`
	BranchScope    uint64         `gorm:"column:branch_scope;not null;default:0;uniqueIndex:ux_template_fields_scope_key,priority:2" json:"-"`
	FieldName      string         `gorm:"column:field_name;size:255;not null" json:"field_name"`
	FieldKey       string         `gorm:"column:field_key;size:255;not null;uniqueIndex:ux_template_fields_scope_key,priority:3" json:"field_key"`
	DisplayOrder   int            `gorm:"column:display_order;not null;default:0" json:"display_order"`
	PodRequirement PodRequirement `gorm:"column:pod_requirement;size:20;not null;default:'NOT_APPLICABLE'" json:"pod_requirement"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TemplateField) TableName() string { return "template_fields" }

// IsBranchSpecific reports whether f overrides base fields.
func (f TemplateField) IsBranchSpecific() bool { return f.BranchID != nil }

// ScopeOf returns the BranchScope value for an optional branch id.
func ScopeOf(branchID *uint64) uint64 {
	if branchID == nil {
		return 0
	}
	return *branchID
}

// Slug lower-cases s, collapses every run of characters outside [a-z0-9]
// into a single '_' and trims leading/trailing '_'. Slug(Slug(x)) == Slug(x).
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
