package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/placereviews/internal/logging"
	"github.com/redmonkez12/placereviews/internal/user"
)

func TestService_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, user.ProviderLocal, created.Provider)

	stored, err := env.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "pw1", *stored.PasswordHash)

	tokens, err := env.service.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)
	assert.NotEmpty(t, tokens.AccessToken)

	identity, err := env.service.ResolveCurrentUser(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.True(t, identity.ExpiresAt.Equal(env.clock.Now().Add(SessionTokenTTL)))

	assert.Equal(t, 1, env.recorder.attempts["register/success"])
	assert.Equal(t, 1, env.recorder.attempts["login/success"])
	assert.Equal(t, 1, env.recorder.provisioned[user.ProviderLocal])
}

func TestService_RegisterDuplicateKeepsFirstPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = env.service.Register(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = env.service.Login(ctx, "a@x.com", "pw1")
	assert.NoError(t, err)
	_, err = env.service.Login(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "pw", ErrInvalidEmailFormat},
		{"no at sign", "not-an-email", "pw", ErrInvalidEmailFormat},
		{"display name form", "Bob <b@x.com>", "pw", ErrInvalidEmailFormat},
		{"too long", strings.Repeat("a", 250) + "@x.com", "pw", ErrInvalidEmailFormat},
		{"empty password", "a@x.com", "", ErrPasswordRequired},
		{"oversized password", "a@x.com", strings.Repeat("p", maxPasswordBytes+1), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}

	_, err := env.users.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_RegisterRace(t *testing.T) {
	svc := NewService(racingRepo{}, fastHasher(), newTestEnv(t).tokens, &fakeVerifier{}, nil, logging.Discard())

	_, err := svc.Register(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestService_ConcurrentRegisterSingleWinner(t *testing.T) {
	env := newTestEnv(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.Register(context.Background(), "a@x.com", "pw")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateUser):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestService_LoginRejectsUniformly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = env.users.Create(ctx, "fed@x.com", nil, user.ProviderGoogle)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "a@x.com", "wrong"},
		{"unknown email", "ghost@x.com", "pw1"},
		{"federated only account", "fed@x.com", "anything"},
		{"empty password", "a@x.com", ""},
		{"empty email", "", "pw1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := env.service.Login(ctx, tt.email, tt.password)
			assert.Nil(t, tokens)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
		})
	}
	assert.Equal(t, len(tests), env.recorder.attempts["login/rejected"])
}

func TestService_LoginStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := NewService(brokenRepo{}, fastHasher(), env.tokens, env.verifier, env.recorder, logging.Discard())

	_, err := svc.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, env.recorder.attempts["login/error"])
}

func TestService_FederatedLoginProvisionsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.verifier.emails["google-token"] = "g@x.com"

	tokens, err := env.service.FederatedLogin(ctx, "google-token")
	require.NoError(t, err)

	identity, err := env.service.ResolveCurrentUser(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "g@x.com", identity.Email)

	stored, err := env.users.GetByEmail(ctx, "g@x.com")
	require.NoError(t, err)
	assert.Nil(t, stored.PasswordHash)
	assert.Equal(t, user.ProviderGoogle, stored.Provider)

	_, err = env.service.FederatedLogin(ctx, "google-token")
	require.NoError(t, err)
	assert.Equal(t, 1, env.recorder.provisioned[user.ProviderGoogle])
	assert.Equal(t, 2, env.recorder.attempts["federated_login/success"])

	// A password-less account cannot be used for password login.
	_, err = env.service.Login(ctx, "g@x.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.service.Login(ctx, "g@x.com", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_FederatedLoginExistingLocalAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.verifier.emails["google-token"] = "a@x.com"

	_, err := env.service.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = env.service.FederatedLogin(ctx, "google-token")
	require.NoError(t, err)

	_, err = env.service.Login(ctx, "a@x.com", "pw1")
	assert.NoError(t, err, "local password still works")
	assert.Zero(t, env.recorder.provisioned[user.ProviderGoogle])
}

func TestService_FederatedLoginRejections(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.FederatedLogin(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, ErrInvalidFederatedToken)

	env.verifier.err = errors.New("jwks fetch failed")
	_, err = env.service.FederatedLogin(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrInvalidFederatedToken)

	assert.Equal(t, 2, env.recorder.attempts["federated_login/rejected"])
}

func TestService_FederatedLoginLosesCreateRace(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.emails["google-token"] = "g@x.com"
	svc := NewService(racingRepo{}, fastHasher(), env.tokens, env.verifier, env.recorder, logging.Discard())

	tokens, err := svc.FederatedLogin(context.Background(), "google-token")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestService_ResolveCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.ResolveCurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.service.ResolveCurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	token, err := env.tokens.CreateToken("anyone@x.com")
	require.NoError(t, err)

	// Tokens are self-contained: the subject need not exist in the store.
	identity, err := env.service.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "anyone@x.com", identity.Email)

	env.clock.Advance(59*time.Minute + 59*time.Second)
	_, err = env.service.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)

	env.clock.Advance(time.Second)
	_, err = env.service.ResolveCurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_EnsureUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.service.EnsureUser(ctx, "seed@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.service.EnsureUser(ctx, "seed@x.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = env.service.EnsureUser(ctx, "bad", "pw")
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}
