package ingest

import (
	"io"
	"time"

	"lr-validation-backend/internal/domain/document"
)

// Upload is one file handed to Ingest. Size is the declared byte length.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ListInput struct {
	ClientID *uint64
	BranchID *uint64
	State    string
	Limit    int
}

type DocumentDTO struct {
	ID             uint64    `json:"id"`
	ClientID       uint64    `json:"client_id"`
	BranchID       *uint64   `json:"branch_id"`
	DocumentNumber string    `json:"document_number"`
	TripDate       string    `json:"trip_date"`
	StoragePath    string    `json:"storage_path"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToDTO(d *document.Document) DocumentDTO {
	return DocumentDTO{
		ID:             d.ID,
		ClientID:       d.ClientID,
		BranchID:       d.BranchID,
		DocumentNumber: d.DocumentNumber,
		TripDate:       d.TripDate.Format(time.DateOnly),
		StoragePath:    d.StoragePath,
		State:          string(d.State),
		CreatedAt:      d.CreatedAt,
	}
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}
