package models

import "github.com/golang-jwt/jwt/v5"

// Admin role accepted on mutating calendar endpoints.
const RoleAdmin = "admin"

// AdminClaims is the JWT payload required by admin-guarded routes.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
