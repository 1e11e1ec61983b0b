// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid generates the time-ordered identifiers used as primary keys for
// accounts, login sessions, chat sessions and activity rows.
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the system entropy source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether raw parses as a UUID of any version.
func Valid(raw string) bool {
	return uuid.Validate(raw) == nil
}
