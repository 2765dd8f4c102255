package document

import (
	"regexp"
	"strings"
	"time"
)

type State string

const (
	// StatePendingUpload is a provisional row whose object may not be stored yet.
	// Only the reconciliation sweep ever reads these.
	StatePendingUpload     State = "Pending_Upload"
	StatePendingValidation State = "Pending_Validation"
	StateValidated         State = "Validated"
)

// AcceptedContentType is the only upload type the pipeline takes.
const AcceptedContentType = "application/pdf"

// MaxUploadBytes is the upload ceiling (12 MB).
const MaxUploadBytes int64 = 12 * 1024 * 1024

const maxNumberLen = 100

// Table: documents (a scanned Lorry Receipt).
type Document struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClientID       uint64    `gorm:"column:client_id;not null;index:idx_documents_client_created,priority:1" json:"client_id"`
	BranchID       *uint64   `gorm:"column:branch_id;index" json:"branch_id"`
	DocumentNumber string    `gorm:"column:document_number;size:100;not null;index" json:"document_number"`
	TripDate       time.Time `gorm:"column:trip_date;type:date;not null" json:"trip_date"`
	StoragePath    string    `gorm:"column:storage_path;size:512;not null;uniqueIndex" json:"storage_path"`
	State          State     `gorm:"column:state;size:32;not null;index" json:"state"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index:idx_documents_client_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// CanAdvanceTo reports whether the lifecycle allows moving from s to next.
// The lifecycle only moves forward: Pending_Upload -> Pending_Validation -> Validated.
func (s State) CanAdvanceTo(next State) bool {
	switch s {
	case StatePendingUpload:
		return next == StatePendingValidation
	case StatePendingValidation:
		return next == StateValidated
	default:
		return false
	}
}

var (
	reNumberUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	// a bare trailing dot is not an extension
	reExtension = regexp.MustCompile(`\.[^.]+$`)
)

// DeriveNumber turns an upload's file name into a display/lookup number:
// extension stripped, whitespace trimmed, unsafe runs replaced by '_',
// truncated to 100 characters. Not unique.
func DeriveNumber(fileName string) string {
	base := reExtension.ReplaceAllString(fileName, "")
	base = strings.TrimSpace(base)
	base = reNumberUnsafe.ReplaceAllString(base, "_")
	if len(base) > maxNumberLen {
		base = base[:maxNumberLen]
	}
	return base
}
