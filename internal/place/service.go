package place

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/placereviews/internal/auth"
	"github.com/redmonkez12/placereviews/internal/logging"
)

const ResourceKind = "place"

var ErrNoIdentity = errors.New("place requires an authenticated owner")

type Recorder interface {
	RecordResourceCreated(kind string)
}

type Service struct {
	repo     Repository
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewService(repo Repository, recorder Recorder, logger *logging.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger, now: time.Now}
}

// Create stores a place owned by the authenticated caller.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in NewPlace) (*Place, error) {
	if identity == nil || identity.Email == "" {
		return nil, ErrNoIdentity
	}

	p := &Place{
		ID:         uuid.New(),
		Name:       in.Name,
		Address:    in.Address,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		OwnerEmail: identity.Email,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordResourceCreated(ResourceKind)
	}
	s.logger.Debug("place created", "place_id", p.ID, "owner", p.OwnerEmail)
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Place, error) {
	return s.repo.List(ctx)
}
