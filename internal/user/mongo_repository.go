package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDocument stores the hash under "password" and tolerates ObjectID ids, so
// the repository can serve an existing accounts collection as well as one it
// created. New documents get a UUID string _id.
type userDocument struct {
	ID           any       `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash *string   `bson:"password,omitempty"`
	Provider     string    `bson:"provider,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

// MongoRepository stores users as documents keyed by a unique email index.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository stores users in coll, normally database.UsersCollection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) Create(ctx context.Context, email string, passwordHash *string, provider string) (*User, error) {
	doc := userDocument{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Provider:     provider,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return doc.toModel(), nil
}

func (d *userDocument) toModel() *User {
	u := &User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Provider:     d.Provider,
		CreatedAt:    d.CreatedAt,
	}
	if s, ok := d.ID.(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			u.ID = id
		}
	}
	if u.Provider == "" {
		u.Provider = ProviderLocal
	}
	return u
}
