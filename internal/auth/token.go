package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

const (
	issuer         = "neuralpost"
	triggerSubject = "automation"
)

// Scopes carried by trigger tokens.
const (
	ScopeAll      = "*"
	ScopeGenerate = "generate"
	ScopeDaily    = "daily"
	ScopeIndexing = "indexing"
)

var (
	// ErrMissingSecret is returned when signing or verifying without a secret.
	ErrMissingSecret = eris.New("TRIGGER_SECRET is not configured")
	// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
	ErrInvalidToken = eris.New("invalid or expired token")
)

// Claims identify the caller of a protected automation endpoint.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the claims grant scope.
func (c *Claims) Allows(scope string) bool {
	return c.Scope == ScopeAll || c.Scope == scope
}

// Signer issues and verifies HS256 bearer tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a signer for secret.
func NewSigner(secret string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for scope that expires after ttl. A non-positive ttl never expires.
func (s *Signer) Issue(scope string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  triggerSubject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", eris.Wrap(err, "signing token")
	}
	return signed, nil
}

// Verify parses a raw token and validates its signature, issuer and expiry.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, eris.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
