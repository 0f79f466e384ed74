package auth

import (
	"github.com/avstore/avpos-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenPayload captures the data available when minting a JWT for a
// logged-in terminal operator.
type SessionTokenPayload struct {
	Role       enums.TerminalRole
	SalesmanID string
	JTI        string
}

// SessionTokenClaims represents the typed JWT issued to the device UI.
type SessionTokenClaims struct {
	Role       enums.TerminalRole `json:"role"`
	SalesmanID string             `json:"salesman_id,omitempty"`
	jwt.RegisteredClaims
}
