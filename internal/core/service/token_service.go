package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// MinSigningKeyBytes is the smallest HMAC-SHA-256 key accepted (256 bits).
const MinSigningKeyBytes = 32

var ErrSigningKey = errors.New("token signing key must be at least 32 bytes")

// TokenConfig holds the externally supplied signing parameters.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// tokenClaims is the JWT payload: registered claims plus email and roles.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// TokenService issues and validates HS256 bearer tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenService fails when the configuration cannot produce verifiable
// tokens; callers treat that as a startup error.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.SigningKey) < MinSigningKeyBytes {
		return nil, ErrSigningKey
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	return &TokenService{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
	}, nil
}

// Issue signs a token for user carrying a snapshot of roles.
func (s *TokenService) Issue(user *domain.User, roles []string, now time.Time) (domain.Token, error) {
	if user == nil || user.ID == "" {
		return domain.Token{}, fmt.Errorf("%w: issue token without subject", domain.ErrInternal)
	}

	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	snapshot := make([]string, len(roles))
	copy(snapshot, roles)

	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Roles: snapshot,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: sign token: %v", domain.ErrInternal, err)
	}

	return domain.Token{Value: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Validate verifies signature, expiry, issuer and audience as of now. A
// token is still valid at the instant of its expiry.
func (s *TokenService) Validate(token string, now time.Time) (*domain.Claims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if claims.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Roles:    claims.Roles,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.ErrAudienceMismatch
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
