package invoice

import "strings"

// Mode selects how strictly Evaluate gates validation.
type Mode string

const (
	// ModeCoarse: every invoice has at least one populated key.
	ModeCoarse Mode = "coarse"
	// ModeStrict: ModeCoarse plus every MANDATORY field populated on every invoice.
	ModeStrict Mode = "strict"
)

func (m Mode) Valid() bool { return m == ModeCoarse || m == ModeStrict }

// Gap describes why one invoice blocks validation.
type Gap struct {
	InvoiceID     uint64   `json:"invoice_id"`
	InvoiceNumber string   `json:"invoice_number"`
	Empty         bool     `json:"empty"`
	Missing       []string `json:"missing_mandatory,omitempty"`
}

type Report struct {
	Mode         Mode  `json:"mode"`
	Complete     bool  `json:"complete"`
	InvoiceCount int   `json:"invoice_count"`
	Gaps         []Gap `json:"gaps,omitempty"`
}

// Evaluate applies the completeness gate to a document's invoices.
// mandatory is only consulted in ModeStrict.
func Evaluate(mode Mode, invoices []Invoice, mandatory []string) Report {
	r := Report{Mode: mode, InvoiceCount: len(invoices)}
	for i := range invoices {
		inv := &invoices[i]
		data := inv.Data()
		g := Gap{InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber}
		if len(data.Populated()) == 0 {
			g.Empty = true
		}
		if mode == ModeStrict {
			for _, k := range mandatory {
				if strings.TrimSpace(data[k]) == "" {
					g.Missing = append(g.Missing, k)
				}
			}
		}
		if g.Empty || len(g.Missing) > 0 {
			r.Gaps = append(r.Gaps, g)
		}
	}
	r.Complete = len(invoices) > 0 && len(r.Gaps) == 0
	return r
}
