package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenTooOld is returned when a token exceeds the configured max age
	ErrTokenTooOld = errors.New("token exceeds maximum age")
)

// Claims are the JWT claims issued by the identity service. The subject is
// the employee id.
type Claims struct {
	DisplayName string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 tokens issued by the identity service
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
	maxAge   time.Duration
}

// NewJWTValidator creates a validator from auth configuration
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		maxAge:   time.Duration(cfg.TokenMaxAge) * time.Second,
	}
}

// ValidateToken parses and validates a bearer token and returns the user
// context it carries.
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: validator has no secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	if v.maxAge > 0 && claims.IssuedAt != nil {
		if time.Since(claims.IssuedAt.Time) > v.maxAge {
			return nil, ErrTokenTooOld
		}
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}

	return &UserContext{
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Roles:       roles,
	}, nil
}
