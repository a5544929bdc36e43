package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/placereviews/internal/auth"
	"github.com/redmonkez12/placereviews/internal/logging"
)

// ResourceKind labels reviews in resource metrics.
const ResourceKind = "review"

var ErrNoIdentity = errors.New("review requires an authenticated author")

// Recorder counts created reviews.
type Recorder interface {
	RecordResourceCreated(kind string)
}

type Service struct {
	repo     Repository
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

// NewService builds a review service. recorder may be nil.
func NewService(repo Repository, recorder Recorder, logger *logging.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a review authored by identity. The author and token
// timestamps are taken from identity, never from the input.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in NewReview) (*Review, error) {
	if identity == nil || identity.Email == "" {
		return nil, ErrNoIdentity
	}

	r := &Review{
		ID:             uuid.New(),
		PlaceName:      in.PlaceName,
		Address:        in.Address,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Rating:         in.Rating,
		ImageURL:       in.ImageURL,
		AuthorEmail:    identity.Email,
		TokenIssuedAt:  identity.IssuedAt,
		TokenExpiresAt: identity.ExpiresAt,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordResourceCreated(ResourceKind)
	}
	s.logger.Debug("review created", "review_id", r.ID, "author", r.AuthorEmail)
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]Review, error) {
	return s.repo.List(ctx)
}
