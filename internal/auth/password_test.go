package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	h := fastHasher()

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=4$"))
	assert.NotContains(t, hash, "pw1")

	assert.True(t, h.Verify("pw1", hash))
	assert.False(t, h.Verify("pw2", hash))
	assert.False(t, h.Verify("", hash))
}

func TestArgon2Hasher_SaltedPerCall(t *testing.T) {
	h := fastHasher()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestArgon2Hasher_DefaultCost(t *testing.T) {
	hash, err := NewArgon2Hasher().Hash("pw")
	require.NoError(t, err)
	assert.Contains(t, hash, "$m=65536,t=3,p=4$")
}

func TestArgon2Hasher_MalformedHashNeverMatches(t *testing.T) {
	h := fastHasher()
	valid, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "pw"},
		{"unknown scheme", "$scrypt$whatever"},
		{"too few parts", "$argon2id$v=19$m=8192,t=1,p=4$c2FsdA"},
		{"wrong version", strings.Replace(valid, "v=19", "v=16", 1)},
		{"garbage params", strings.Replace(valid, parts[3], "m=x,t=y,p=z", 1)},
		{"zero threads", strings.Replace(valid, parts[3], "m=8192,t=1,p=0", 1)},
		{"zero time", strings.Replace(valid, parts[3], "m=8192,t=0,p=4", 1)},
		{"huge memory", strings.Replace(valid, parts[3], "m=4294967295,t=1,p=4", 1)},
		{"bad salt encoding", strings.Replace(valid, parts[4], "!!!", 1)},
		{"empty digest", strings.TrimSuffix(valid, parts[5])},
		{"short digest", strings.Replace(valid, parts[5], "AAAA", 1)},
		{"truncated bcrypt", "$2a$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("pw", tt.hash))
			})
		})
	}
}

func TestArgon2Hasher_VerifiesLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	h := fastHasher()
	assert.True(t, h.Verify("1234", string(legacy)))
	assert.False(t, h.Verify("12345", string(legacy)))
}
