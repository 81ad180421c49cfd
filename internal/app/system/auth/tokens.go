package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
)

// ErrInvalidToken covers every token failure mode: bad signature, wrong
// algorithm, expiry, garbage input. Callers get a uniform 401.
var ErrInvalidToken = apperr.New(apperr.Authentication, "invalid or expired token")

// Claims is the JWT payload. Subject carries the user's hex id.
// IsTestToken marks the development-only shortcut token; it is honored
// exclusively when the server runs in dev mode.
type Claims struct {
	Username    string `json:"username"`
	IsTestToken bool   `json:"isTestToken,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// Issue signs a token embedding the user's id and username with the
// configured expiry.
func (tm *TokenManager) Issue(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Parse verifies the token's signature and expiry and returns its claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
