package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers forged, malformed and expired tokens alike so
// callers cannot distinguish which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the session-token payload. The token is signed, not
// encrypted: holders can read these fields.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// MakeAccess issues an HS256 session token bound to uid. Tokens carry
// no expiry: a session ends when signout clears the stored token.
func MakeAccess(secret, uid, email, name string) (string, error) {
	c := Claims{
		UID: uid, Email: email, Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Subject:  uid,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseAccess verifies the signature against secret and returns the
// decoded claims, or ErrInvalidToken.
func ParseAccess(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	return c, nil
}
