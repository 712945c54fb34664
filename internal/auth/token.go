package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/newswire/backend/internal/models"
)

// TokenTTL is how long an issued session token stays valid. There is no refresh
// mechanism; expiry forces a new login.
const TokenTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer mints and verifies the signed session tokens carried in the
// Authorization header. Tokens are stateless: nothing is stored server-side.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: TokenTTL}
}

// Generate mints an HS256 token claiming userID, valid for the issuer's TTL.
func (i *TokenIssuer) Generate(userID uint) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify returns the userID claimed by the token. The claim is trusted only
// when the signature verifies against the issuer's secret and the token has
// not expired; anything else fails with ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (uint, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
