package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenRevoked indicates the token was invalidated by logout or a block.
var ErrTokenRevoked = errors.New("token revoked")

// Claims carries the principal snapshot inside an access token.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer access tokens. Revocations are
// tracked in Redis keyed by token id so a logout or an account block takes
// effect before the token expires.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	client *redis.Client
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret, issuer string, ttl time.Duration, client *redis.Client) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, client: client}
}

// TTL exposes the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a new access token for the account.
func (tm *TokenManager) Issue(account *Account) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    account.ID,
		Email:     account.Email,
		Name:      account.Name,
		AvatarURL: account.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry of a token and checks revocation.
func (tm *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	revoked, err := tm.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates a token until its natural expiry.
func (tm *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return tm.client.Set(ctx, revocationKey(claims.ID), "1", ttl).Err()
}

func (tm *TokenManager) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := tm.client.Get(ctx, revocationKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: revocation lookup: %w", err)
	}
	return true, nil
}

func revocationKey(tokenID string) string {
	return "revoked:" + tokenID
}
