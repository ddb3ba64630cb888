package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/founditapp/foundit/internal/db"
	"github.com/founditapp/foundit/internal/model"
)

func createTestUser(t *testing.T, database *sql.DB, name, email string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), database, name, email, "x", false)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return user
}

func createTestItem(t *testing.T, database *sql.DB, reporter *model.User, title, itemType string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, &model.Item{
		Title:         title,
		Type:          itemType,
		ReporterID:    reporter.ID,
		ReporterName:  reporter.Name,
		ReporterEmail: reporter.Email,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", title, err)
	}
	return item
}

func createTestClaim(t *testing.T, database *sql.DB, item *model.Item, claimer *model.User) *model.Claim {
	t.Helper()
	claim, err := CreateClaim(context.Background(), database, &model.Claim{
		ItemID:       item.ID,
		ItemTitle:    item.Title,
		ClaimerID:    claimer.ID,
		ClaimerName:  claimer.Name,
		ClaimerEmail: claimer.Email,
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	return claim
}

func TestClaimStartsPending(t *testing.T) {
	database := db.NewTestDB(t)
	owner := createTestUser(t, database, "Ana", "ana@example.com")
	claimer := createTestUser(t, database, "Ben", "ben@example.com")
	item := createTestItem(t, database, owner, "Black Wallet", model.ItemTypeFound)

	claim := createTestClaim(t, database, item, claimer)
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected pending, got %q", claim.Status)
	}
}

func TestAcceptClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, database, "Ana", "ana@example.com")
	claimer := createTestUser(t, database, "Ben", "ben@example.com")
	item := createTestItem(t, database, owner, "Black Wallet", model.ItemTypeFound)
	claim := createTestClaim(t, database, item, claimer)

	if err := AcceptClaim(ctx, database, claim.ID); err != nil {
		t.Fatalf("AcceptClaim: %v", err)
	}

	got, _ := GetClaim(ctx, database, claim.ID)
	if got.Status != model.ClaimStatusAccepted {
		t.Errorf("expected accepted, got %q", got.Status)
	}

	// Accepting also marks the item accepted.
	gotItem, _ := GetItem(ctx, database, item.ID)
	if gotItem.Status != model.ItemStatusAccepted {
		t.Errorf("expected item accepted, got %q", gotItem.Status)
	}
}

func TestRejectClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, database, "Ana", "ana@example.com")
	claimer := createTestUser(t, database, "Ben", "ben@example.com")
	item := createTestItem(t, database, owner, "Black Wallet", model.ItemTypeFound)
	claim := createTestClaim(t, database, item, claimer)

	if err := RejectClaim(ctx, database, claim.ID); err != nil {
		t.Fatalf("RejectClaim: %v", err)
	}

	got, _ := GetClaim(ctx, database, claim.ID)
	if got.Status != model.ClaimStatusRejected {
		t.Errorf("expected rejected, got %q", got.Status)
	}

	// Rejected is terminal: accept afterwards must fail and change nothing.
	if err := AcceptClaim(ctx, database, claim.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	got, _ = GetClaim(ctx, database, claim.ID)
	if got.Status != model.ClaimStatusRejected {
		t.Errorf("terminal claim mutated to %q", got.Status)
	}
}

func TestMarkClaimDoneRequiresAccepted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, database, "Ana", "ana@example.com")
	claimer := createTestUser(t, database, "Ben", "ben@example.com")
	item := createTestItem(t, database, owner, "Black Wallet", model.ItemTypeFound)
	claim := createTestClaim(t, database, item, claimer)

	// done on pending fails and leaves everything unchanged.
	if err := MarkClaimDone(ctx, database, claim.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on pending claim, got %v", err)
	}
	gotItem, _ := GetItem(ctx, database, item.ID)
	if gotItem.Status != model.ItemStatusPending {
		t.Errorf("failed transition mutated item to %q", gotItem.Status)
	}

	// accept then done flips the item to completed.
	if err := AcceptClaim(ctx, database, claim.ID); err != nil {
		t.Fatalf("AcceptClaim: %v", err)
	}
	if err := MarkClaimDone(ctx, database, claim.ID); err != nil {
		t.Fatalf("MarkClaimDone: %v", err)
	}

	got, _ := GetClaim(ctx, database, claim.ID)
	if got.Status != model.ClaimStatusDone {
		t.Errorf("expected done, got %q", got.Status)
	}
	gotItem, _ = GetItem(ctx, database, item.ID)
	if gotItem.Status != model.ItemStatusCompleted {
		t.Errorf("expected item completed, got %q", gotItem.Status)
	}

	// done is terminal.
	if err := MarkClaimDone(ctx, database, claim.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on done claim, got %v", err)
	}
}

func TestTransitionMissingClaim(t *testing.T) {
	database := db.NewTestDB(t)
	if err := AcceptClaim(context.Background(), database, "nope"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for unknown claim, got %v", err)
	}
}

func TestListClaimsForUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, database, "Ana", "ana@example.com")
	claimer := createTestUser(t, database, "Ben", "ben@example.com")
	outsider := createTestUser(t, database, "Cid", "cid@example.com")
	item := createTestItem(t, database, owner, "Black Wallet", model.ItemTypeFound)
	createTestClaim(t, database, item, claimer)

	// Both parties see the claim.
	for _, email := range []string{owner.Email, claimer.Email} {
		claims, err := ListClaimsForUser(ctx, database, email)
		if err != nil {
			t.Fatalf("ListClaimsForUser(%s): %v", email, err)
		}
		if len(claims) != 1 {
			t.Errorf("expected 1 claim for %s, got %d", email, len(claims))
		}
	}

	// An unrelated user sees nothing.
	claims, _ := ListClaimsForUser(ctx, database, outsider.Email)
	if len(claims) != 0 {
		t.Errorf("expected 0 claims for outsider, got %d", len(claims))
	}
}
