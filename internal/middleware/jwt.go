package middleware // reusable echo middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// signed with secret (HS256) and stores its subject as an opaque string
// under UserIDKey.  Numeric subjects are accepted and rendered in decimal.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token", "code": "unauthorized"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                return []byte(secret), nil
            }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token", "code": "unauthorized"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims", "code": "unauthorized"})
            }
            sub, ok := subject(claims["sub"])
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject", "code": "unauthorized"})
            }
            c.Set(UserIDKey, sub)
            return next(c)
        }
    }
}

// UserID returns the authenticated user id set by JWTAuth.
func UserID(c echo.Context) (string, bool) {
    v, ok := c.Get(UserIDKey).(string)
    return v, ok && v != ""
}

func subject(v interface{}) (string, bool) {
    switch s := v.(type) {
    case string:
        s = strings.TrimSpace(s)
        return s, s != ""
    case float64:
        if s <= 0 || s != float64(int64(s)) {
            return "", false
        }
        return strconv.FormatInt(int64(s), 10), true
    }
    return "", false
}
