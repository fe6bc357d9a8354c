package models

import "github.com/golang-jwt/jwt/v4"

// JwtCustomClaims are the claims carried by the local session token issued
// after a successful Firebase ID token exchange.
type JwtCustomClaims struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// FirebaseLoginRequest defines the request body for the token exchange.
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
