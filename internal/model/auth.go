package model

import "time"

// PasskeyRequest opens an admin session.
type PasskeyRequest struct {
	Passkey string `json:"passkey" binding:"required"`
}

// Session is an issued admin token.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}
