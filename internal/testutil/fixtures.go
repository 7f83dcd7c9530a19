package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateDiver creates a user with the given name, email and certified
// max depth.
func (f *Fixtures) CreateDiver(ctx context.Context, first, last, email string, maxDepth int) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		EmailCI:   text.Fold(email),
		FirstName: first,
		LastName:  last,
		MaxDepth:  maxDepth,
		CreatedAt: now,
		LastLogin: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test diver: %v", err)
	}
	return u
}

// CreateOperator creates a user flagged as a boat operator with the
// given notification threshold.
func (f *Fixtures) CreateOperator(ctx context.Context, first, last, email string, threshold int) models.User {
	f.t.Helper()

	u := f.CreateDiver(ctx, first, last, email, 40)
	u.IsOperator = true
	u.OperatorNotificationThreshold = &threshold
	if _, err := f.db.Collection("users").ReplaceOne(ctx, map[string]any{"_id": u.ID}, u); err != nil {
		f.t.Fatalf("failed to flag test operator: %v", err)
	}
	return u
}

// CreateAvailability inserts an availability record with an explicit
// creation time so tests can steer the "new today" flag.
func (f *Fixtures) CreateAvailability(ctx context.Context, userID, date string, createdAt time.Time) models.AvailabilityRecord {
	f.t.Helper()

	rec := models.AvailabilityRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		CreatedAt: createdAt,
	}
	if _, err := f.db.Collection("availability").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test availability: %v", err)
	}
	return rec
}

// CreateSite creates a dive site owned by createdBy.
func (f *Fixtures) CreateSite(ctx context.Context, name string, depth int, createdBy string) models.DiveSite {
	f.t.Helper()

	site := models.DiveSite{
		ID:        uuid.NewString(),
		Name:      name,
		NameCI:    text.Fold(name),
		Depth:     depth,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("dive_sites").InsertOne(ctx, site); err != nil {
		f.t.Fatalf("failed to create test site: %v", err)
	}
	return site
}

// CreateInterest links a user to a site.
func (f *Fixtures) CreateInterest(ctx context.Context, userID, siteID string) models.SiteInterest {
	f.t.Helper()

	rec := models.SiteInterest{
		ID:        uuid.NewString(),
		UserID:    userID,
		SiteID:    siteID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("site_interest").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test interest: %v", err)
	}
	return rec
}
