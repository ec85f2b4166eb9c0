// Package auth turns owner tokens into the owner identity used by the graph
// store. Tokens are HS256 JWTs carrying the owner in the "owner" claim.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the owner identity.
type Claims struct {
	jwt.RegisteredClaims
	Owner string `json:"owner"`
}

func GenerateToken(owner string, secretKey []byte, validityDuration time.Duration) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", fmt.Errorf("%w: empty owner", common.ErrorValidation)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Owner: owner,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// OwnerFromToken validates tokenString and returns its owner claim.
func OwnerFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Owner == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Owner, nil
}
