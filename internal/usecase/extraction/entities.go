package extraction

import (
	"lr-validation-backend/internal/adapter/gateway"

	"github.com/google/uuid"
)

type JobDTO struct {
	JobID      uuid.UUID `json:"job_id"`
	DocumentID uint64    `json:"document_id,omitempty"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Error      string    `json:"error,omitempty"`
}

func toJobDTO(j *gateway.Job) *JobDTO {
	return &JobDTO{JobID: j.ID, DocumentID: j.DocumentID, Status: j.Status, Progress: j.Progress, Error: j.Error}
}

// ImportResult counts what one import did. TripDate is set when the
// document's trip date was superseded by an extracted value.
type ImportResult struct {
	Fetched  int     `json:"fetched"`
	Created  int     `json:"created"`
	Skipped  int     `json:"skipped"`
	TripDate *string `json:"trip_date,omitempty"`

	// DroppedKeys are gateway custom data keys with no resolved field.
	DroppedKeys []string `json:"dropped_keys,omitempty"`
}
