package auth

import (
	"context"
	"time"
)

// SessionTokenTTL is the fixed lifetime of every issued session token.
const SessionTokenTTL = 60 * time.Minute

// TokenClaims are the verified contents of a session token.
type TokenClaims struct {
	Subject string
	// IssuedAt is informational only and may be absent on tokens from older issuers.
	IssuedAt  *time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies session tokens.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(subject string) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// Hasher produces and checks salted one-way password hashes.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches encodedHash. Malformed hashes
	// never match.
	Verify(password, encodedHash string) bool
}

// IdentityVerifier validates a third-party identity token and returns the verified email.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

// RateLimiter throttles unauthenticated endpoints per client IP.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

// Recorder receives authentication outcome metrics.
type Recorder interface {
	RecordAuthAttempt(operation, outcome string)
	RecordUserProvisioned(provider string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthAttempt(string, string) {}
func (noopRecorder) RecordUserProvisioned(string)     {}
