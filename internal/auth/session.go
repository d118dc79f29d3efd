package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-go/internal/config"
)

// ErrUnauthenticated is returned when no valid caller can be resolved.
var ErrUnauthenticated = errors.New("unauthenticated")

// Caller is the identity behind a request. It is resolved once at the HTTP
// boundary and handed to services as a plain value.
type Caller struct {
	UserID    uint
	TokenID   string    // jti of the credential, used for logout
	ExpiresAt time.Time // credential expiry
}

// SessionGate turns a raw credential into a Caller.
type SessionGate interface {
	ResolveCaller(ctx context.Context, credential string) (Caller, error)
}

// JWTSessionGate resolves HS256 session tokens and honours the blacklist.
type JWTSessionGate struct {
	secret    string
	issuer    string
	blacklist TokenBlacklist
}

// NewJWTSessionGate gates on session tokens. blacklist may be nil.
func NewJWTSessionGate(authCfg config.AuthConfig, blacklist TokenBlacklist) *JWTSessionGate {
	return &JWTSessionGate{secret: authCfg.JWTSecretKey, issuer: SessionIssuer, blacklist: blacklist}
}

// NewChatSessionGate gates on chat tokens instead of session tokens.
func NewChatSessionGate(authCfg config.AuthConfig, blacklist TokenBlacklist) *JWTSessionGate {
	return &JWTSessionGate{secret: authCfg.JWTSecretKey, issuer: ChatIssuer, blacklist: blacklist}
}

// ResolveCaller returns ErrUnauthenticated (wrapped) for a missing, invalid or
// revoked credential. Blacklist outages surface as other errors.
func (g *JWTSessionGate) ResolveCaller(ctx context.Context, credential string) (Caller, error) {
	if credential == "" {
		return Caller{}, ErrUnauthenticated
	}
	claims, err := ValidateToken(ctx, credential, g.secret, g.issuer, g.blacklist)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenRevoked) {
			return Caller{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return Caller{}, err
	}
	return CallerFromClaims(claims), nil
}

// CallerFromClaims builds a Caller from validated claims.
func CallerFromClaims(claims *Claims) Caller {
	c := Caller{UserID: claims.UserID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c
}
