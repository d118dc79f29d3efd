package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"social-go/internal/config"
)

const (
	// SessionIssuer signs the session cookie / bearer tokens.
	SessionIssuer = "social-go"
	// ChatIssuer signs the short-lived tokens accepted by the chat server.
	ChatIssuer = "social-go-chat"
)

var (
	// ErrTokenInvalid covers malformed, expired, wrongly signed or wrongly issued tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked means the token's jti is on the blacklist.
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims 是 JWT 中的自定义声明，嵌入了 jwt.RegisteredClaims。
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// GenerateToken issues a session token for userID that lives for authCfg.JWTExpiry.
func GenerateToken(userID uint, authCfg config.AuthConfig) (string, *Claims, error) {
	return generate(userID, SessionIssuer, authCfg.JWTExpiry, authCfg.JWTSecretKey)
}

// GenerateChatToken issues a token the chat server accepts. It cannot be used
// as a session token.
func GenerateChatToken(userID uint, authCfg config.AuthConfig) (string, *Claims, error) {
	return generate(userID, ChatIssuer, authCfg.ChatExpiry, authCfg.JWTSecretKey)
}

func generate(userID uint, issuer string, ttl time.Duration, key string) (string, *Claims, error) {
	// 生成 JWT ID (jti)
	jwtID, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate jti: %w", err)
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jwtID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(key))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign jwt: %w", err)
	}
	return tokenString, claims, nil
}

// ValidateToken 验证给定的 JWT 字符串的有效性。
// Parse and signature problems wrap ErrTokenInvalid, a revoked jti returns
// ErrTokenRevoked, and a failing blacklist lookup is returned as is.
// blacklist may be nil.
func ValidateToken(ctx context.Context, tokenString, jwtKey, issuer string, blacklist TokenBlacklist) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	if blacklist != nil {
		if claims.ID == "" {
			return nil, fmt.Errorf("%w: missing jti", ErrTokenInvalid)
		}
		isRevoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token blacklist: %w", err)
		}
		if isRevoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}
