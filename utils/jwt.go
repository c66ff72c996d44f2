package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PeekTokenExpiry reads the exp claim of an access token without verifying
// its signature. Verification is the server's job; the client only uses the
// claim for logging and diagnostics around session restoration.
func PeekTokenExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token does not carry an exp claim")
	}
	return exp.Time, nil
}

// PeekTokenSubject reads the sub claim of an access token without verifying
// its signature.
func PeekTokenSubject(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token does not carry a sub claim")
	}
	return sub, nil
}
