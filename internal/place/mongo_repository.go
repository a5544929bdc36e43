package place

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

type placeDocument struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Address    string    `bson:"address"`
	Latitude   float64   `bson:"latitude"`
	Longitude  float64   `bson:"longitude"`
	OwnerEmail string    `bson:"owner_email"`
	CreatedAt  time.Time `bson:"created_at"`
}

// MongoRepository stores places as documents keyed by a UUID string _id.
type MongoRepository struct {
	coll   *mongo.Collection
	logger *logging.Logger
}

// NewMongoRepository stores places in coll, normally database.PlacesCollection.
func NewMongoRepository(coll *mongo.Collection, logger *logging.Logger) *MongoRepository {
	return &MongoRepository{coll: coll, logger: logger}
}

func (m *MongoRepository) Insert(ctx context.Context, p *Place) error {
	doc := placeDocument{
		ID:         p.ID.String(),
		Name:       p.Name,
		Address:    p.Address,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		OwnerEmail: p.OwnerEmail,
		CreatedAt:  p.CreatedAt,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// List skips documents whose _id is not a UUID.
func (m *MongoRepository) List(ctx context.Context) ([]Place, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer cur.Close(ctx)

	places := []Place{}
	for cur.Next(ctx) {
		var doc placeDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode place: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			m.logger.Warn("skipping place with malformed id", "id", doc.ID)
			continue
		}
		places = append(places, Place{
			ID:         id,
			Name:       doc.Name,
			Address:    doc.Address,
			Latitude:   doc.Latitude,
			Longitude:  doc.Longitude,
			OwnerEmail: doc.OwnerEmail,
			CreatedAt:  doc.CreatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read places: %w", err)
	}
	return places, nil
}
