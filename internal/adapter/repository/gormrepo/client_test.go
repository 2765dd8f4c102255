package gormrepo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestClient_GetClientAndBranch(t *testing.T) {
	db := openTestDB(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	acme := seedClient(t, db, "Acme")
	other := seedClient(t, db, "Globex")
	mumbai := seedBranch(t, db, acme.ID, "Mumbai")

	got, err := repo.GetClient(ctx, acme.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("unexpected client: %+v", got)
	}

	b, err := repo.GetBranch(ctx, acme.ID, mumbai.ID)
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if b.Name != "Mumbai" || b.ClientID != acme.ID {
		t.Fatalf("unexpected branch: %+v", b)
	}

	// branch exists but belongs to another client
	if _, err := repo.GetBranch(ctx, other.ID, mumbai.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for foreign branch, got %v", err)
	}
	if _, err := repo.GetClient(ctx, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
