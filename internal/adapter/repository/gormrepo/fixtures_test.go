package gormrepo

import (
	"testing"
	"time"

	clientDomain "lr-validation-backend/internal/domain/client"
	docDomain "lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/testutil/testdb"
	"lr-validation-backend/pkg/id"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.Open(t)
}

func seedClient(t *testing.T, db *gorm.DB, name string) *clientDomain.Client {
	t.Helper()
	c := &clientDomain.Client{Name: name, Address: "1 Dock Road"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedBranch(t *testing.T, db *gorm.DB, clientID uint64, name string) *clientDomain.Branch {
	t.Helper()
	b := &clientDomain.Branch{ClientID: clientID, Name: name}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return b
}

func makeDocument(clientID uint64, state docDomain.State) *docDomain.Document {
	return &docDomain.Document{
		ClientID:       clientID,
		DocumentNumber: "LR-" + id.NewID32()[:8],
		TripDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		StoragePath:    "lr-bucket/" + id.NewID32() + ".pdf",
		State:          state,
	}
}

func seedDocument(t *testing.T, db *gorm.DB, clientID uint64, state docDomain.State) *docDomain.Document {
	t.Helper()
	d := makeDocument(clientID, state)
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return d
}
