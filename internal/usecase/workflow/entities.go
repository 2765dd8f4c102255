package workflow

import domain "lr-validation-backend/internal/domain/workflow"

type StageStatus struct {
	Stage     domain.Stage   `json:"stage"`
	Completed bool           `json:"completed"`
	Ready     bool           `json:"ready"`
	After     []domain.Stage `json:"after,omitempty"`
}

// Snapshot is a document's position in the billing pipeline.
type Snapshot struct {
	DocumentID uint64        `json:"document_id"`
	Stages     []StageStatus `json:"stages"`
	Completed  int           `json:"completed"`
	Total      int           `json:"total"`
	Ratio      float64       `json:"ratio"`
}

func snapshotOf(p *domain.Progress) *Snapshot {
	stages := domain.Stages()
	s := &Snapshot{
		DocumentID: p.DocumentID,
		Stages:     make([]StageStatus, len(stages)),
		Completed:  p.Completed.Count(),
		Total:      len(stages),
		Ratio:      p.Completed.Ratio(),
	}
	for i, st := range stages {
		s.Stages[i] = StageStatus{
			Stage:     st,
			Completed: p.Completed.Has(st),
			Ready:     p.Completed.Ready(st),
			After:     st.Predecessors(),
		}
	}
	return s
}
