package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the host of one match.
type Claims struct {
	MatchID string `json:"match_id"`
	HostID  int64  `json:"host_id"`
	Exp     int64  `json:"exp"`
}

// hostClaims is the JWT body.
type hostClaims struct {
	jwt.RegisteredClaims
	MatchID string `json:"match_id"`
	HostID  int64  `json:"host_id"`
}

// DefaultTokenExpiry is the default lifetime of a host token.
const DefaultTokenExpiry = 24 * time.Hour

const tokenIssuer = "mafia-host"

// GenerateToken creates an HS256 signed host token for matchID.
func GenerateToken(matchID string, hostID int64, secret []byte, expiry time.Duration) (token string, expiresAt time.Time, err error) {
	if len(secret) == 0 {
		return "", time.Time{}, fmt.Errorf("token secret is required")
	}
	now := time.Now().UTC()
	expiresAt = now.Add(expiry)
	claims := hostClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   matchID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		MatchID: matchID,
		HostID:  hostID,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func VerifyToken(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	var parsed hostClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.MatchID == "" {
		return nil, fmt.Errorf("%w: missing match_id", ErrInvalidToken)
	}
	return &Claims{
		MatchID: parsed.MatchID,
		HostID:  parsed.HostID,
		Exp:     parsed.ExpiresAt.Unix(),
	}, nil
}

// RandomSecret returns n random bytes for use as a signing key.
func RandomSecret(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}
