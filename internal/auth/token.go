package auth

import (
	"context"
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for bearer tokens that fail verification or
// belong to a revoked user.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrTokensDisabled is returned when no signing secret is configured.
var ErrTokensDisabled = errors.New("bearer tokens are not enabled")

const tokenIssuer = "teamhub"

// Claims is the bearer token payload.
type Claims struct {
	Email string `json:"email"`
	jwtlib.RegisteredClaims
}

// IssueToken signs a short-lived bearer token for identity.
func (s *Service) IssueToken(identity *Identity) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrTokensDisabled
	}

	now := s.now()
	claims := Claims{
		Email: identity.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   identity.UserID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// AuthenticateToken verifies a bearer token and resolves its subject to an
// Identity. Tokens of revoked users are rejected.
func (s *Service) AuthenticateToken(ctx context.Context, raw string) (*Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrTokensDisabled
	}

	parsed, err := jwtlib.ParseWithClaims(raw, &Claims{}, func(*jwtlib.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithIssuer(tokenIssuer),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading token subject: %w", err)
	}
	if u.RevokedAt != nil {
		return nil, ErrInvalidToken
	}

	return identityOf(u), nil
}
