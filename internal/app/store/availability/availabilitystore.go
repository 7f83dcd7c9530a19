package availabilitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/boatfinder/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("availability")}
}

// Toggle flips the user's availability for a date: delete the record if
// it exists, create one if it doesn't. Returns whether the user is
// available after the call.
//
// The existence check and the write are two operations, so two
// simultaneous toggles for the same (user, date) can race. The unique
// (user_id, date) index turns the worst case into a duplicate-key
// error on one of the writers, and the next toggle self-heals, so the
// race is left undefended rather than serialized.
func (s *Store) Toggle(ctx context.Context, userID, date string) (bool, error) {
	key := bson.M{"user_id": userID, "date": date}

	res, err := s.c.DeleteOne(ctx, key)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	rec := models.AvailabilityRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost a toggle race; the record exists, which is the
			// state this call was creating anyway.
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// InRange returns every record with date in [start, end] inclusive,
// ordered by date. ISO date strings compare lexicographically.
func (s *Store) InRange(ctx context.Context, start, end string) ([]models.AvailabilityRecord, error) {
	filter := bson.M{"date": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AvailabilityRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OnDate returns every record for one date.
func (s *Store) OnDate(ctx context.Context, date string) ([]models.AvailabilityRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AvailabilityRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DatesForUser returns the dates (ascending) the user is available on
// within [start, end] inclusive.
func (s *Store) DatesForUser(ctx context.Context, userID, start, end string) ([]string, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var dates []string
	for cur.Next(ctx) {
		var rec models.AvailabilityRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		dates = append(dates, rec.Date)
	}
	return dates, cur.Err()
}

// Exists reports whether the user has a record for the date.
func (s *Store) Exists(ctx context.Context, userID, date string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
