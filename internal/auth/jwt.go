package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the custom JWT claims shared with the auth service that issues
// the tokens. RegisteredClaims carries the standard expiry, issued-at and JTI.
type Claims struct {
	UserID   uint   `json:"userId"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// ValidateToken verifies the signature and expiry of tokenString and, when a
// blacklist is provided, that the token has not been revoked. Token issuance
// lives in the external auth service; both sides share jwtKey.
func ValidateToken(ctx context.Context, tokenString string, jwtKey string, blacklist TokenBlacklist) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing JWT: %w", err)
	}
	if !token.Valid {
		// Covers expiry and not-before among other invalid states.
		return nil, fmt.Errorf("invalid JWT")
	}

	if blacklist != nil {
		if claims.ID == "" {
			return nil, fmt.Errorf("JWT has no JTI claim, cannot check blacklist")
		}
		revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Fail closed: an unreachable blacklist rejects the token.
			return nil, fmt.Errorf("checking token blacklist: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("JWT has been revoked")
		}
	}

	return claims, nil
}
