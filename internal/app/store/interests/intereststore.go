package intereststore

import (
	"context"
	"time"

	"github.com/dalemusser/boatfinder/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_interest")}
}

// Toggle flips the user's interest in a site and returns whether the
// user is interested after the call. Same benign-race posture as
// availability toggling: the unique (user_id, site_id) index absorbs a
// simultaneous double toggle.
func (s *Store) Toggle(ctx context.Context, userID, siteID string) (bool, error) {
	key := bson.M{"user_id": userID, "site_id": siteID}

	res, err := s.c.DeleteOne(ctx, key)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	rec := models.SiteInterest{
		ID:        uuid.NewString(),
		UserID:    userID,
		SiteID:    siteID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// SiteIDsForUser returns the ids of sites the user is interested in.
func (s *Store) SiteIDsForUser(ctx context.Context, userID string) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var rec models.SiteInterest
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		ids = append(ids, rec.SiteID)
	}
	return ids, cur.Err()
}

// ForSite returns every interest record for one site.
func (s *Store) ForSite(ctx context.Context, siteID string) ([]models.SiteInterest, error) {
	return s.find(ctx, bson.M{"site_id": siteID})
}

// ForSites returns every interest record for a set of sites.
func (s *Store) ForSites(ctx context.Context, siteIDs []string) ([]models.SiteInterest, error) {
	if len(siteIDs) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"site_id": bson.M{"$in": siteIDs}})
}

// CountForSite reports how many interest records reference the site.
func (s *Store) CountForSite(ctx context.Context, siteID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"site_id": siteID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.SiteInterest, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SiteInterest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
