// Package middleware holds the HTTP-boundary concerns the conversation
// core itself never sees: JWT decoding, adapted to the core's opaque
// user-id + LLM API-key pair. CORS is not handled here; the server
// entry point installs fiber's CORS middleware.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of token fields the core boundary consumes: a
// user-identifying string and the caller's own LLM provider API key.
// Both are opaque past this point; the core never re-validates them.
type Claims struct {
	UserID    string `json:"sub"`
	LLMAPIKey string `json:"llm_api_key"`
	jwt.RegisteredClaims
}

// contextKey namespaces fiber.Locals keys set by this middleware.
type contextKey string

const (
	localsUserID    contextKey = "trip_designer.user_id"
	localsLLMAPIKey contextKey = "trip_designer.llm_api_key"
)

// RequireAuth validates the bearer JWT on every request, storing the
// decoded user id and LLM API key in fiber locals for downstream
// handlers.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		if claims.UserID == "" || claims.LLMAPIKey == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token missing required claims")
		}

		c.Locals(string(localsUserID), claims.UserID)
		c.Locals(string(localsLLMAPIKey), claims.LLMAPIKey)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by RequireAuth.
func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals(string(localsUserID)).(string)
	return v
}

// LLMAPIKey returns the caller's LLM provider API key stored by
// RequireAuth.
func LLMAPIKey(c *fiber.Ctx) string {
	v, _ := c.Locals(string(localsLLMAPIKey)).(string)
	return v
}
