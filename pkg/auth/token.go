package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// IssuedToken is a freshly signed identity token with the registered claims callers track.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
	Identity  Identity
}

// MintIdentityToken issues a signed identity token that expires after the configured TTL.
func MintIdentityToken(cfg config.JWTConfig, now time.Time, identity Identity) (string, error) {
	issued, err := IssueIdentityToken(cfg, now, identity)
	if err != nil {
		return "", err
	}
	return issued.Token, nil
}

// IssueIdentityToken is MintIdentityToken returning the token id and expiry alongside the token.
func IssueIdentityToken(cfg config.JWTConfig, now time.Time, identity Identity) (*IssuedToken, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.ExpirationMinutes <= 0 {
		return nil, fmt.Errorf("jwt expiration minutes must be positive")
	}
	if identity.AccountID <= 0 {
		return nil, fmt.Errorf("identity account id is required")
	}
	if !identity.Role.IsPersisted() {
		return nil, fmt.Errorf("invalid account type %q", identity.Role)
	}

	claims := IdentityClaims{
		Identity: Identity{
			AccountID: identity.AccountID,
			FirstName: strings.TrimSpace(identity.FirstName),
			LastName:  strings.TrimSpace(identity.LastName),
			Email:     strings.TrimSpace(identity.Email),
			Role:      identity.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   fmt.Sprintf("%d", identity.AccountID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing jwt: %w", err)
	}
	return &IssuedToken{
		Token:     signed,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  claims.Identity,
	}, nil
}

// ParseIdentityToken verifies the signature, algorithm, issuer and expiry and returns typed claims.
func ParseIdentityToken(cfg config.JWTConfig, tokenString string) (*IdentityClaims, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !claims.Identity.IsAuthenticated() {
		return nil, fmt.Errorf("identity token carries no account")
	}

	return claims, nil
}

func validateConfig(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return fmt.Errorf("jwt issuer is required")
	}
	return nil
}
