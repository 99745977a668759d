package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims represents the JWT payload for admin access tokens.
type AdminClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
