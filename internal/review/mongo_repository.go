package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/redmonkez12/placereviews/internal/logging"
)

type reviewDocument struct {
	ID             string     `bson:"_id"`
	PlaceName      string     `bson:"place_name"`
	Address        string     `bson:"address"`
	Latitude       float64    `bson:"latitude"`
	Longitude      float64    `bson:"longitude"`
	Rating         int        `bson:"rating"`
	ImageURL       *string    `bson:"image_url,omitempty"`
	AuthorEmail    string     `bson:"author_email"`
	TokenIssuedAt  *time.Time `bson:"token_issued_at,omitempty"`
	TokenExpiresAt time.Time  `bson:"token_expires_at"`
	CreatedAt      time.Time  `bson:"created_at"`
}

// MongoRepository stores reviews in a single collection.
type MongoRepository struct {
	coll   *mongo.Collection
	logger *logging.Logger
}

func NewMongoRepository(coll *mongo.Collection, logger *logging.Logger) *MongoRepository {
	return &MongoRepository{coll: coll, logger: logger}
}

func (m *MongoRepository) Insert(ctx context.Context, r *Review) error {
	doc := reviewDocument{
		ID:             r.ID.String(),
		PlaceName:      r.PlaceName,
		Address:        r.Address,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Rating:         r.Rating,
		ImageURL:       r.ImageURL,
		AuthorEmail:    r.AuthorEmail,
		TokenIssuedAt:  r.TokenIssuedAt,
		TokenExpiresAt: r.TokenExpiresAt,
		CreatedAt:      r.CreatedAt,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// List skips documents whose _id is not a UUID and logs them.
func (m *MongoRepository) List(ctx context.Context) ([]Review, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]Review, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			m.logger.Warn("skipping review with malformed id", "id", d.ID)
			continue
		}
		reviews = append(reviews, Review{
			ID:             id,
			PlaceName:      d.PlaceName,
			Address:        d.Address,
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			Rating:         d.Rating,
			ImageURL:       d.ImageURL,
			AuthorEmail:    d.AuthorEmail,
			TokenIssuedAt:  d.TokenIssuedAt,
			TokenExpiresAt: d.TokenExpiresAt,
			CreatedAt:      d.CreatedAt,
		})
	}
	return reviews, nil
}
