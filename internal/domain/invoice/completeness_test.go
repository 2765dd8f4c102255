package invoice

import (
	"reflect"
	"testing"
)

func mk(id uint64, d CustomData) Invoice {
	inv := Invoice{ID: id, InvoiceNumber: "INV"}
	if d != nil {
		inv.SetData(d)
	}
	return inv
}

func TestEvaluate_Coarse(t *testing.T) {
	tests := []struct {
		name     string
		invoices []Invoice
		complete bool
		gaps     int
	}{
		{"no invoices", nil, false, 0},
		{"one invoice with data", []Invoice{mk(1, CustomData{"po": "42"})}, true, 0},
		{"one of two empty", []Invoice{mk(1, CustomData{"po": "42"}), mk(2, nil)}, false, 1},
		{"blank values only", []Invoice{mk(1, CustomData{"po": "  "})}, false, 1},
		{"both populated", []Invoice{mk(1, CustomData{"a": "x"}), mk(2, CustomData{"b": "y"})}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(ModeCoarse, tt.invoices, []string{"never_checked"})
			if r.Complete != tt.complete {
				t.Fatalf("complete = %v, want %v (%+v)", r.Complete, tt.complete, r)
			}
			if len(r.Gaps) != tt.gaps {
				t.Fatalf("gaps = %d, want %d", len(r.Gaps), tt.gaps)
			}
		})
	}
}

func TestEvaluate_StrictReportsMissingMandatory(t *testing.T) {
	invs := []Invoice{
		mk(1, CustomData{"po": "42", "pod_date": "2025-01-01"}),
		mk(2, CustomData{"po": "43"}),
	}
	r := Evaluate(ModeStrict, invs, []string{"pod_date"})
	if r.Complete {
		t.Fatalf("strict mode must reject missing mandatory field")
	}
	if len(r.Gaps) != 1 || r.Gaps[0].InvoiceID != 2 || !reflect.DeepEqual(r.Gaps[0].Missing, []string{"pod_date"}) {
		t.Fatalf("unexpected gaps: %+v", r.Gaps)
	}

	invs[1].SetData(invs[1].Data().Merge(CustomData{"pod_date": "2025-01-02"}))
	if r := Evaluate(ModeStrict, invs, []string{"pod_date"}); !r.Complete {
		t.Fatalf("expected complete after filling mandatory field: %+v", r)
	}
}

func TestCustomData_Merge(t *testing.T) {
	base := CustomData{"a": "1", "b": "2"}
	got := base.Merge(CustomData{"b": "20", "c": "3"})
	want := CustomData{"a": "1", "b": "20", "c": "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
	if base["b"] != "2" {
		t.Fatalf("Merge must not mutate receiver")
	}
}

func TestCustomData_Populated(t *testing.T) {
	got := CustomData{"z": "1", "a": "x", "blank": " "}.Populated()
	if !reflect.DeepEqual(got, []string{"a", "z"}) {
		t.Fatalf("Populated = %v", got)
	}
}
