package sitestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/boatfinder/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no site exists for the given id.
	ErrNotFound = errors.New("site not found")
	// ErrDuplicateName is returned when a site with the same
	// case-insensitive name already exists.
	ErrDuplicateName = errors.New("a site with this name already exists")
	// ErrNotCreator is returned when a delete is attempted by someone
	// other than the site's creator.
	ErrNotCreator = errors.New("only the site creator can delete this site")
)

// Store manages dive sites. It also holds the interest collection so
// deleting a site can cascade to its interest records in one place; an
// interest must never reference a nonexistent site.
type Store struct {
	sites     *mongo.Collection
	interests *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		sites:     db.Collection("dive_sites"),
		interests: db.Collection("site_interest"),
	}
}

// Create inserts a new site. Name must already be normalized and
// validated; uniqueness is checked case-insensitively and backed by
// the unique name_ci index.
func (s *Store) Create(ctx context.Context, site models.DiveSite) (models.DiveSite, error) {
	site.ID = uuid.NewString()
	site.NameCI = text.Fold(site.Name)
	site.CreatedAt = time.Now().UTC()

	// Pre-check gives the common case a clean error; the unique index
	// still backstops a racing insert.
	err := s.sites.FindOne(ctx, bson.M{"name_ci": site.NameCI}).Err()
	if err == nil {
		return models.DiveSite{}, ErrDuplicateName
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.DiveSite{}, err
	}

	if _, err := s.sites.InsertOne(ctx, site); err != nil {
		if wafflemongo.IsDup(err) {
			return models.DiveSite{}, ErrDuplicateName
		}
		return models.DiveSite{}, err
	}
	return site, nil
}

// GetByID loads a site.
func (s *Store) GetByID(ctx context.Context, id string) (*models.DiveSite, error) {
	var site models.DiveSite
	if err := s.sites.FindOne(ctx, bson.M{"_id": id}).Decode(&site); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// All returns every site sorted by name.
func (s *Store) All(ctx context.Context) ([]models.DiveSite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.sites.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DiveSite
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a site and every interest record referencing it.
// Only the creator may delete. Interests are removed after the site so
// a failed site delete leaves everything intact; a failure between the
// two deletes is surfaced to the caller.
func (s *Store) Delete(ctx context.Context, id, requesterID string) error {
	site, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if site.CreatedBy != requesterID {
		return ErrNotCreator
	}

	if _, err := s.sites.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	if _, err := s.interests.DeleteMany(ctx, bson.M{"site_id": id}); err != nil {
		return err
	}
	return nil
}
