package field

import "sort"

// Resolve merges the fields of one (client, branch) lookup into the effective
// entry-form field set.
//
// Precedence is total and independent of input order:
//   - a branch-specific field always beats a base field for the same key;
//   - among fields of the same scope the lowest id wins.
//
// The result is sorted by DisplayOrder, ties broken by id.
func Resolve(fields []TemplateField) []TemplateField {
	byKey := make(map[string]TemplateField, len(fields))
	for _, f := range fields {
		cur, ok := byKey[f.FieldKey]
		if !ok || outranks(f, cur) {
			byKey[f.FieldKey] = f
		}
	}

	out := make([]TemplateField, 0, len(byKey))
	for _, f := range byKey {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func outranks(a, b TemplateField) bool {
	if a.IsBranchSpecific() != b.IsBranchSpecific() {
		return a.IsBranchSpecific()
	}
	return a.ID < b.ID
}

// Keys returns the field keys of a resolved set, in order.
func Keys(fields []TemplateField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.FieldKey
	}
	return out
}

// MandatoryKeys returns the keys flagged PodMandatory.
func MandatoryKeys(fields []TemplateField) []string {
	var out []string
	for _, f := range fields {
		if f.PodRequirement == PodMandatory {
			out = append(out, f.FieldKey)
		}
	}
	return out
}
