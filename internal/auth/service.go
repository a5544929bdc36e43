package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/redmonkez12/placereviews/internal/logging"
	"github.com/redmonkez12/placereviews/internal/user"
)

// Operation and outcome labels passed to Recorder.
const (
	OpRegister      = "register"
	OpLogin         = "login"
	OpFederated     = "federated_login"
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// AuthTokens is returned by every successful login.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Identity is the verified caller behind a session token.
type Identity struct {
	Email     string     `json:"email"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Service handles authentication business logic
type Service struct {
	users    user.Repository
	hasher   Hasher
	tokens   TokenService
	identity IdentityVerifier
	recorder Recorder
	logger   *logging.Logger

	// dummyHash is compared against when the email is unknown so that a miss
	// costs about as much as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	users user.Repository,
	hasher Hasher,
	tokens TokenService,
	identity IdentityVerifier,
	recorder Recorder,
	logger *logging.Logger,
) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		identity: identity,
		recorder: recorder,
		logger:   logger,
	}
}

// Register creates a local account. It is not idempotent: a second call with
// the same email fails with ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	if err := validateEmail(email); err != nil {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeRejected)
		return nil, err
	}
	if password == "" {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeRejected)
		return nil, ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeRejected)
		return nil, ErrPasswordTooLong
	}

	// Cheap pre-check; the store's unique index still decides races below.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeRejected)
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, user.ErrNotFound) {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, &passwordHash, user.ProviderLocal)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			s.recorder.RecordAuthAttempt(OpRegister, OutcomeRejected)
			return nil, ErrDuplicateUser
		}
		s.recorder.RecordAuthAttempt(OpRegister, OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.RecordAuthAttempt(OpRegister, OutcomeSuccess)
	s.recorder.RecordUserProvisioned(user.ProviderLocal)
	return newUser, nil
}

// Login authenticates an email and password and issues a session token.
// Unknown emails, federated-only accounts and wrong passwords all yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" || len(password) > maxPasswordBytes {
		s.recorder.RecordAuthAttempt(OpLogin, OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.burnVerify(password)
			s.recorder.RecordAuthAttempt(OpLogin, OutcomeRejected)
			return nil, ErrInvalidCredentials
		}
		s.recorder.RecordAuthAttempt(OpLogin, OutcomeError)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.HasPassword() {
		s.burnVerify(password)
		s.recorder.RecordAuthAttempt(OpLogin, OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, *existingUser.PasswordHash) {
		s.recorder.RecordAuthAttempt(OpLogin, OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(existingUser.Email)
	if err != nil {
		s.recorder.RecordAuthAttempt(OpLogin, OutcomeError)
		return nil, err
	}

	s.recorder.RecordAuthAttempt(OpLogin, OutcomeSuccess)
	return tokens, nil
}

// FederatedLogin verifies a third-party identity token, provisions a
// password-less account on first sight and issues a session token.
func (s *Service) FederatedLogin(ctx context.Context, rawIdentityToken string) (*AuthTokens, error) {
	email, err := s.identity.Verify(ctx, rawIdentityToken)
	if err != nil {
		s.recorder.RecordAuthAttempt(OpFederated, OutcomeRejected)
		if errors.Is(err, ErrInvalidFederatedToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFederatedToken, err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.recorder.RecordAuthAttempt(OpFederated, OutcomeError)
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		_, err := s.users.Create(ctx, email, nil, user.ProviderGoogle)
		switch {
		case err == nil:
			s.recorder.RecordUserProvisioned(user.ProviderGoogle)
			s.logger.Info("provisioned federated user", "email", email)
		case errors.Is(err, user.ErrDuplicateEmail):
			// A concurrent login created it first.
		default:
			s.recorder.RecordAuthAttempt(OpFederated, OutcomeError)
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	tokens, err := s.issue(email)
	if err != nil {
		s.recorder.RecordAuthAttempt(OpFederated, OutcomeError)
		return nil, err
	}

	s.recorder.RecordAuthAttempt(OpFederated, OutcomeSuccess)
	return tokens, nil
}

// ResolveCurrentUser verifies a session token and returns its subject.
func (s *Service) ResolveCurrentUser(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	return &Identity{
		Email:     claims.Subject,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// EnsureUser registers email with password unless the account already exists.
func (s *Service) EnsureUser(ctx context.Context, email, password string) (bool, error) {
	_, err := s.Register(ctx, email, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDuplicateUser):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) issue(email string) (*AuthTokens, error) {
	accessToken, err := s.tokens.CreateToken(email)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(SessionTokenTTL.Seconds()),
	}, nil
}

func (s *Service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password")
		if err != nil {
			s.logger.Warn("failed to build dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		s.hasher.Verify(password, s.dummyHash)
	}
}

func validateEmail(email string) error {
	if email == "" || len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmailFormat
	}
	return nil
}
