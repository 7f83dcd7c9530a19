package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user exists for the given id.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyOperator is returned by Promote for users who already
	// carry the operator flag.
	ErrAlreadyOperator = errors.New("user is already an operator")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by identity-provider subject id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new profile after normalizing fields. Called on
// first login, so LastLogin starts equal to CreatedAt.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.LastLogin = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// TouchLastLogin stamps the user's last-login time.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})
	return err
}

// ProfileUpdate holds the self-service profile fields. Nil pointers
// mean "leave unchanged"; values must already be validated and
// normalized by the caller.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	CertLevel *string
	MaxDepth  *int
	Threshold *int
}

// ApplyProfile applies a partial update and returns the updated user.
// The update is a single $set, so it either lands whole or not at all.
func (s *Store) ApplyProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"last_login": time.Now().UTC()}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.CertLevel != nil {
		set["cert_level"] = *upd.CertLevel
	}
	if upd.MaxDepth != nil {
		set["max_depth"] = *upd.MaxDepth
	}
	if upd.Threshold != nil {
		set["operator_notification_threshold"] = *upd.Threshold
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Promote flags a user as an operator with the given starting
// threshold. Promotion is a privileged action; threshold changes after
// promotion go through ApplyProfile.
func (s *Store) Promote(ctx context.Context, id string, threshold int) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsOperator {
		return nil, ErrAlreadyOperator
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	set := bson.M{"is_operator": true, "operator_notification_threshold": threshold}
	var out models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Operators returns every user flagged as an operator.
func (s *Store) Operators(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"is_operator": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByIDs loads the users for a set of ids, keyed by id. Missing ids are
// simply absent from the map.
func (s *Store) ByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Search lists users newest-first, optionally filtered by a
// case-insensitive substring over name and email.
func (s *Store) Search(ctx context.Context, term string) ([]models.User, error) {
	filter := bson.M{}
	if term != "" {
		// QuoteMeta so user input can't act as a pattern.
		re := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
