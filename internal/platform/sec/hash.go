// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// # Secret Hashing
//
// Account passwords and chat access codes share one bcrypt policy.

// PasswordMaxBytes is the longest secret bcrypt accepts without truncation.
const PasswordMaxBytes = 72

// ErrSecretTooLong is returned for secrets bcrypt would reject.
var ErrSecretTooLong = errors.New("sec: secret exceeds 72 bytes")

// HashPassword hashes a password or access code with bcrypt.
func HashPassword(secret string) (string, error) {
	if len(secret) > PasswordMaxBytes {
		return "", ErrSecretTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec_hash_failed: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether secret matches the stored bcrypt hash.
// A malformed or empty hash never matches.
func CheckPasswordHash(secret, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(secret)) == nil
}

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// SpendPasswordCheck runs one bcrypt comparison against a throwaway hash.
//
// Login calls it when the email is unknown so that response time does not
// reveal whether an account exists.
func SpendPasswordCheck(secret string) {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword([]byte("meattrack-decoy-secret"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(secret))
}
