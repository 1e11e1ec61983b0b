// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, random tokens, signed
// links, role enumerations) from the domain logic. Domain services depend on the
// small functions here rather than on crypto packages directly.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidLink is returned for any tampered, expired or mis-purposed link token.
var ErrInvalidLink = errors.New("sec: invalid link token")

// LinkClaims is the payload of a signed one-time link (e.g. email verification).
//
// The registered ID claim carries a random nonce; the caller stores it in a
// one-time store so a link can be redeemed only once.
type LinkClaims struct {
	jwt.RegisteredClaims

	// Purpose binds the token to a single flow so a token minted for one link
	// cannot be replayed against another endpoint.
	Purpose string `json:"pur"`
}

// LinkSigner mints and verifies HMAC-signed link tokens.
type LinkSigner struct {
	secret []byte
	issuer string
}

// NewLinkSigner creates a signer keyed by the application session secret.
func NewLinkSigner(secret, issuer string) (*LinkSigner, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sec: link secret must be at least 32 bytes")
	}
	return &LinkSigner{secret: []byte(secret), issuer: issuer}, nil
}

// Sign creates a token for subject with the given purpose, nonce and lifetime.
func (signer *LinkSigner) Sign(subject, purpose, nonce string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := LinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Subject:   subject,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign link: %w", err)
	}

	return signedToken, nil
}

// Verify checks signature, issuer, expiry and purpose of a link token.
func (signer *LinkSigner) Verify(tokenString, purpose string) (*LinkClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &LinkClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return signer.secret, nil
	}, jwt.WithIssuer(signer.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	claims, ok := token.Claims.(*LinkClaims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidLink
	}

	return claims, nil
}
