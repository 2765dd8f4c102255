package workflow

import (
	"time"
)

type Stage string

const (
	StageGenerateBill  Stage = "generate-bill"
	StagePODValidation Stage = "pod-validation"
	StageFinalExcel    Stage = "final-excel"
	StageExcel1        Stage = "excel-1"
	StageExcel2        Stage = "excel-2"
	StageValidation1   Stage = "validation-1"
	StageValidation2   Stage = "validation-2"
	StageInvoice1      Stage = "invoice-1"
	StageInvoice2      Stage = "invoice-2"
)

type node struct {
	stage Stage
	after []Stage
}

// graph is the billing pipeline in topological order. Bit i of a Bitset is graph[i].
var graph = []node{
	{StageGenerateBill, nil},
	{StagePODValidation, []Stage{StageGenerateBill}},
	{StageFinalExcel, []Stage{StagePODValidation}},
	{StageExcel1, []Stage{StageFinalExcel}},
	{StageExcel2, []Stage{StageFinalExcel}},
	{StageValidation1, []Stage{StageExcel1}},
	{StageValidation2, []Stage{StageExcel2}},
	{StageInvoice1, []Stage{StageValidation1}},
	{StageInvoice2, []Stage{StageValidation2}},
}

var index = func() map[Stage]int {
	m := make(map[Stage]int, len(graph))
	for i, n := range graph {
		m[n.stage] = i
	}
	return m
}()

// Stages lists every stage in topological order.
func Stages() []Stage {
	out := make([]Stage, len(graph))
	for i, n := range graph {
		out[i] = n.stage
	}
	return out
}

func (s Stage) Valid() bool {
	_, ok := index[s]
	return ok
}

// Predecessors returns the stages that must be complete before s.
func (s Stage) Predecessors() []Stage {
	i, ok := index[s]
	if !ok {
		return nil
	}
	return append([]Stage(nil), graph[i].after...)
}

// ExternallyTriggered reports whether s is completed by an outside workflow
// rather than by an operator.
func (s Stage) ExternallyTriggered() bool { return s == StageGenerateBill }

// Bitset records completed stages; bit i is Stages()[i].
type Bitset uint16

func (b Bitset) Has(s Stage) bool {
	i, ok := index[s]
	return ok && b&(1<<uint(i)) != 0
}

func (b Bitset) With(s Stage) Bitset {
	i, ok := index[s]
	if !ok {
		return b
	}
	return b | 1<<uint(i)
}

// Ready reports whether every predecessor of s is complete in b.
func (b Bitset) Ready(s Stage) bool {
	for _, p := range s.Predecessors() {
		if !b.Has(p) {
			return false
		}
	}
	return true
}

// MissingBefore lists the incomplete predecessors of s.
func (b Bitset) MissingBefore(s Stage) []Stage {
	var out []Stage
	for _, p := range s.Predecessors() {
		if !b.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

func (b Bitset) Count() int {
	n := 0
	for _, s := range Stages() {
		if b.Has(s) {
			n++
		}
	}
	return n
}

// Ratio is completed/total in [0, 1].
func (b Bitset) Ratio() float64 { return float64(b.Count()) / float64(len(graph)) }

// Table: workflow_progress. One row per validated document.
type Progress struct {
	DocumentID uint64    `gorm:"column:document_id;primaryKey;autoIncrement:false" json:"document_id"`
	Completed  Bitset    `gorm:"column:completed;not null;default:0" json:"completed"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Progress) TableName() string { return "workflow_progress" }
