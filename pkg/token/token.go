package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims carried by dashboard bearer tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HMAC bearer tokens.
type Issuer struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewIssuer(secret, issuer string) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, leeway: 5 * time.Second}
}

// Issue returns a signed token for the session that expires with it.
func (i *Issuer) Issue(userID, role, sessionID string, expiresAt time.Time) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates the signature and expiry and returns the claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		// jwt/v4 has no leeway option; tolerate small clock skew on expiry only.
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors == jwt.ValidationErrorExpired &&
			claims.ExpiresAt != nil && time.Since(claims.ExpiresAt.Time) <= i.leeway {
			return &claims, nil
		}
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return &claims, nil
}
