package utils // package utils provides helpers for issuing access tokens

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT together with its expiry.  Tokens are issued
// by the identity provider in production; this helper exists so operators
// and tests can mint tokens with the shared secret.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// NewAccessToken signs an HS256 JWT whose subject is the opaque user id.
func NewAccessToken(secret, userID string, ttl time.Duration) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, errors.New("jwt secret is empty")
    }
    if userID == "" {
        return AccessToken{}, errors.New("user id is empty")
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.RegisteredClaims{
        Subject:   userID,
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(exp),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
