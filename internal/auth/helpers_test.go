package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/placereviews/internal/logging"
	"github.com/redmonkez12/placereviews/internal/user"
)

const testSecret = "test-secret-0123456789abcdef0123"

// fastHasher keeps argon2 cheap enough for unit tests.
func fastHasher() *Argon2Hasher {
	return NewArgon2Hasher(WithArgon2Cost(1, 8*1024))
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{now: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeVerifier maps raw identity tokens to emails.
type fakeVerifier struct {
	emails map[string]string
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	email, ok := f.emails[raw]
	if !ok {
		return "", ErrInvalidFederatedToken
	}
	return email, nil
}

type countingRecorder struct {
	mu          sync.Mutex
	attempts    map[string]int
	provisioned map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{attempts: map[string]int{}, provisioned: map[string]int{}}
}

func (r *countingRecorder) RecordAuthAttempt(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[operation+"/"+outcome]++
}

func (r *countingRecorder) RecordUserProvisioned(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provisioned[provider]++
}

// racingRepo reports every email as missing and then loses the insert race.
type racingRepo struct {
	user.Repository
}

func (racingRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (racingRepo) Create(context.Context, string, *string, string) (*user.User, error) {
	return nil, user.ErrDuplicateEmail
}

type brokenRepo struct{}

var errStoreDown = errors.New("store unavailable")

func (brokenRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, errStoreDown
}

func (brokenRepo) Create(context.Context, string, *string, string) (*user.User, error) {
	return nil, errStoreDown
}

type testEnv struct {
	service  *Service
	users    *user.MemoryRepository
	tokens   *JWTService
	clock    *fixedClock
	recorder *countingRecorder
	verifier *fakeVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tokens, err := NewJWTService([]byte(testSecret), WithClock(clock.Now))
	require.NoError(t, err)

	env := &testEnv{
		users:    user.NewMemoryRepository(),
		tokens:   tokens,
		clock:    clock,
		recorder: newCountingRecorder(),
		verifier: &fakeVerifier{emails: map[string]string{}},
	}
	env.service = NewService(env.users, fastHasher(), env.tokens, env.verifier, env.recorder, logging.Discard())
	return env
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

// flipByte changes one character well inside the last (signature) segment.
func flipByte(token string) string {
	b := []byte(token)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// lastCharVariants returns token with its final character replaced by every
// other base64url character. For a 32 byte signature the final character
// carries unused low bits, which lenient decoders ignore.
func lastCharVariants(token string) []string {
	last := token[len(token)-1]
	variants := make([]string, 0, len(base64URLAlphabet)-1)
	for i := 0; i < len(base64URLAlphabet); i++ {
		if base64URLAlphabet[i] == last {
			continue
		}
		variants = append(variants, token[:len(token)-1]+string(base64URLAlphabet[i]))
	}
	return variants
}
