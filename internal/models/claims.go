package models

import "github.com/golang-jwt/jwt/v5"

type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsReviewer reports whether the claims belong to a compliance reviewer.
func (c *UserClaims) IsReviewer() bool {
	return c.Role == "reviewer" || c.Role == "admin"
}
