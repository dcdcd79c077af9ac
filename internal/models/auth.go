package models

import "github.com/golang-jwt/jwt/v5"

// TokenResponse is the payload returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// JWTClaims is the access token payload. Subject carries the user email.
type JWTClaims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}
