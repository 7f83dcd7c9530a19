package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/dalemusser/boatfinder/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		ID:        "sub-1",
		Email:     "  Alice@Example.COM ",
		FirstName: "Alice",
		LastName:  "Chen",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.CreatedAt.IsZero() || !created.LastLogin.Equal(created.CreatedAt) {
		t.Errorf("first login should stamp LastLogin == CreatedAt: %+v", created)
	}

	got, err := store.GetByID(ctx, "sub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FullName() != "Alice Chen" {
		t.Errorf("full name: got %q", got.FullName())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyProfile_PartialUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 18)

	phone := "0412345678"
	depth := 40
	updated, err := store.ApplyProfile(ctx, u.ID, userstore.ProfileUpdate{
		Phone:    &phone,
		MaxDepth: &depth,
	})
	if err != nil {
		t.Fatalf("apply profile: %v", err)
	}
	if updated.Phone != "0412345678" || updated.MaxDepth != 40 {
		t.Errorf("updated fields wrong: %+v", updated)
	}
	// Untouched fields survive.
	if updated.FirstName != "Alice" || updated.LastName != "Chen" {
		t.Errorf("unset fields must not change: %+v", updated)
	}
}

func TestPromote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateDiver(ctx, "Olive", "Marsh", "olive@example.com", 30)

	promoted, err := store.Promote(ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsOperator {
		t.Fatal("promote must set the operator flag")
	}
	if promoted.OperatorNotificationThreshold == nil || *promoted.OperatorNotificationThreshold != 3 {
		t.Fatalf("promote must set the threshold: %+v", promoted.OperatorNotificationThreshold)
	}

	if _, err := store.Promote(ctx, u.ID, 5); !errors.Is(err, userstore.ErrAlreadyOperator) {
		t.Fatalf("expected ErrAlreadyOperator, got %v", err)
	}
	if _, err := store.Promote(ctx, "missing", 3); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOperatorsAndSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 40)
	fx.CreateDiver(ctx, "Bob", "Reed", "bob@example.com", 18)
	fx.CreateOperator(ctx, "Olive", "Marsh", "olive@example.com", 3)

	ops, err := store.Operators(ctx)
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if len(ops) != 1 || ops[0].Email != "olive@example.com" {
		t.Fatalf("operators: got %+v", ops)
	}

	found, err := store.Search(ctx, "CHE")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].FirstName != "Alice" {
		t.Fatalf("search by name fragment: got %+v", found)
	}

	all, err := store.Search(ctx, "")
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("empty search should list everyone, got %d", len(all))
	}
}

func TestByIDs_MissingIDsAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 40)

	byID, err := store.ByIDs(ctx, []string{u.ID, "ghost"})
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	if len(byID) != 1 {
		t.Fatalf("expected 1 user, got %d", len(byID))
	}
	if _, ok := byID["ghost"]; ok {
		t.Fatal("missing ids must be absent from the map")
	}
}
