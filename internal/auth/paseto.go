package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
)

// PasetoService handles PASETO v4.local session tokens (XChaCha20 + BLAKE2b MAC)
// with the same sub/iat/exp claims as JWTService.
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte, opts ...TokenOption) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	o := applyTokenOptions(opts)
	return &PasetoService{symmetricKey: key, now: o.now}, nil
}

// CreateToken generates a new PASETO v4.local token for subject
func (s *PasetoService) CreateToken(subject string) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(SessionTokenTTL))
	token.SetSubject(subject)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts and authenticates the token, then checks expiry
// against the service clock.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	if !canonicalV4Local(tokenStr) {
		return nil, fmt.Errorf("%w: non-canonical token encoding", ErrInvalidToken)
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(notExpiredAt(s.now))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing expiration", ErrInvalidToken)
	}

	claims := &TokenClaims{Subject: subject, ExpiresAt: expiresAt}
	if issuedAt, err := token.GetIssuedAt(); err == nil {
		claims.IssuedAt = &issuedAt
	}
	return claims, nil
}

func notExpiredAt(now func() time.Time) paseto.Rule {
	return func(token paseto.Token) error {
		exp, err := token.GetExpiration()
		if err != nil {
			return err
		}
		if !now().Before(exp) {
			return fmt.Errorf("token expired at %s", exp.Format(time.RFC3339))
		}
		return nil
	}
}

// canonicalV4Local reports whether the payload (and footer, if any) are strict
// unpadded base64url, so a changed trailing character cannot decode to the same bytes.
func canonicalV4Local(tokenStr string) bool {
	body, ok := strings.CutPrefix(tokenStr, "v4.local.")
	if !ok {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, part := range strings.Split(body, ".") {
		if _, err := enc.DecodeString(part); err != nil {
			return false
		}
	}
	return true
}
