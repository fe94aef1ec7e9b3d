// Package auth issues and checks the session tokens handed out on login.
// Sessions are stateless: nothing about them is stored server-side.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "accountkeeper"

// Claims carries the account the session belongs to.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

func GenerateToken(accountID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: accountID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Issuer mints session tokens with a fixed secret and lifetime.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secret string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), validity: validity}
}

func (i *Issuer) Issue(accountID string) (string, error) {
	return GenerateToken(accountID, i.secret, i.validity)
}

// GetAccountIDFromToken validates the token and returns its account id.
// An expired token yields common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.AccountID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
