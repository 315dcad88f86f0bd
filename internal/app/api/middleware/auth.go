package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/oceanview/backend/pkg/response"
)

const (
	ctxKeyResidentID = "residentID"
	ctxKeyIsStaff    = "isStaff"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	ResidentID string `json:"resident_id"`
	IsStaff    bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// SignToken issues a bearer token for a logged-in account.
func SignToken(secret, residentID string, isStaff bool, ttl time.Duration) (string, error) {
	claims := &Claims{
		ResidentID: residentID,
		IsStaff:    isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   residentID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a bearer token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// caller's identity on the gin context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(
				response.APIResponseCodeUnauthorized.HTTPStatus(),
				response.ErrorT(response.APIResponseCodeUnauthorized, "missing bearer token"),
			)
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(
				response.APIResponseCodeUnauthorized.HTTPStatus(),
				response.ErrorT(response.APIResponseCodeUnauthorized, err.Error()),
			)
			return
		}

		c.Set(ctxKeyResidentID, claims.ResidentID)
		c.Set(ctxKeyIsStaff, claims.IsStaff)
		c.Next()
	}
}

// RequireStaff must run after RequireAuth; it rejects non-staff callers.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			c.AbortWithStatusJSON(
				response.APIResponseCodeForbidden.HTTPStatus(),
				response.ErrorT(response.APIResponseCodeForbidden, "staff only"),
			)
			return
		}
		c.Next()
	}
}

// ResidentID returns the authenticated caller's resident id.
func ResidentID(c *gin.Context) string {
	return c.GetString(ctxKeyResidentID)
}

// IsStaff reports whether the authenticated caller is a staff account.
func IsStaff(c *gin.Context) bool {
	return c.GetBool(ctxKeyIsStaff)
}
