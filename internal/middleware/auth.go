// Package middleware provides HTTP middleware for the API: JWT
// validation and reviewer role gating.
package middleware

import (
	"strings"

	"aegis/internal/config"
	"aegis/internal/models"
	"aegis/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth validates the bearer token and stores the claims on the request.
func Auth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c)
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &models.UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GetEnv("JWT_SECRET", "aegis")), nil
	})
	if err != nil || !token.Valid {
		return response.Unauthorized(c)
	}

	c.Locals("claims", claims)
	return c.Next()
}

// RequireReviewer rejects requests whose claims lack a reviewer role.
func RequireReviewer(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || !claims.IsReviewer() {
		return response.Forbidden(c)
	}
	return c.Next()
}
