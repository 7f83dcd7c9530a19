package sitestore_test

import (
	"errors"
	"testing"

	intereststore "github.com/dalemusser/boatfinder/internal/app/store/interests"
	sitestore "github.com/dalemusser/boatfinder/internal/app/store/sites"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/dalemusser/boatfinder/internal/testutil"
)

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.DiveSite{Name: "Wreck A", Depth: 25, CreatedBy: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.Create(ctx, models.DiveSite{Name: "wreck a", Depth: 30, CreatedBy: "u2"})
	if !errors.Is(err, sitestore.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for case-insensitive duplicate, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, sitestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAll_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := sitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateSite(ctx, "Oak Park", 12, "u1")
	fx.CreateSite(ctx, "Bare Island", 18, "u1")
	fx.CreateSite(ctx, "Magic Point", 20, "u1")

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	want := []string{"Bare Island", "Magic Point", "Oak Park"}
	if len(all) != len(want) {
		t.Fatalf("expected %d sites, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("site[%d]: got %q, want %q", i, all[i].Name, name)
		}
	}
}

func TestDelete_CreatorOnlyAndCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := sitestore.New(db)
	interests := intereststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	site := fx.CreateSite(ctx, "Bare Island", 18, "creator")
	fx.CreateInterest(ctx, "u1", site.ID)
	fx.CreateInterest(ctx, "u2", site.ID)

	if err := store.Delete(ctx, site.ID, "intruder"); !errors.Is(err, sitestore.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	// The refused delete must leave everything in place.
	if n, _ := interests.CountForSite(ctx, site.ID); n != 2 {
		t.Fatalf("interest count after refused delete: got %d, want 2", n)
	}

	if err := store.Delete(ctx, site.ID, "creator"); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if _, err := store.GetByID(ctx, site.ID); !errors.Is(err, sitestore.ErrNotFound) {
		t.Fatalf("site should be gone, got %v", err)
	}
	if n, _ := interests.CountForSite(ctx, site.ID); n != 0 {
		t.Fatalf("interests should cascade on delete, %d left", n)
	}
}

func TestDelete_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Delete(ctx, "missing", "u1"); !errors.Is(err, sitestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
