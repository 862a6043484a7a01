package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/ticket-purchase/pkg/response"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
)

// ContextKeyAccountID is the gin context key holding the authenticated account
const ContextKeyAccountID = "account_id"

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating HMAC-signed tokens
	Secret string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
}

// JWTMiddleware validates the bearer token and stores the purchasing
// account in the gin context. The account is taken from the account_id
// claim, falling back to user_id and then sub.
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, ErrMissingAuthHeader) {
				code = "MISSING_TOKEN"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(code, err.Error()))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("TOKEN_EXPIRED", "Access token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid token claims"))
			return
		}

		accountID := accountFromClaims(claims)
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Missing account_id in token"))
			return
		}

		c.Set(ContextKeyAccountID, accountID)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

func accountFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"account_id", "user_id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	sub, _ := claims.GetSubject()
	return sub
}

// GetAccountID extracts the authenticated account ID from gin context
func GetAccountID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyAccountID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
