// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// SeedUser is one account declared in a seed file.
type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
}

// SeedFile is the root document of a seed file.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads and parses a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth_seed_read_failed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes a seed document and rejects unknown fields and roles.
func ParseSeed(raw []byte) (*SeedFile, error) {
	var file SeedFile

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("auth_seed_decode_failed: %w", err)
	}

	for index, user := range file.Users {
		if user.Username == "" || user.Email == "" || len(user.Password) < 8 {
			return nil, fmt.Errorf("auth_seed_invalid_user: entry %d needs username, email and an 8+ character password", index)
		}
		if _, err := sec.ParseUserRole(user.Role); err != nil {
			return nil, fmt.Errorf("auth_seed_invalid_user: entry %d: %w", index, err)
		}
	}

	return &file, nil
}

/*
Seed creates every declared account that does not exist yet.

Seeded accounts are active and verified. Existing accounts (same email or
username) are left untouched, so seeding is safe on every boot.

Returns:
  - int: Accounts created
  - error: The first persistence failure
*/
func Seed(context context.Context, users UserRepository, file *SeedFile, logger *slog.Logger) (int, error) {
	created := 0

	for _, declared := range file.Users {
		email := sec.NormalizeIdentifier(declared.Email)

		if exists, err := seedExists(context, users, email, declared.Username); err != nil {
			return created, err
		} else if exists {
			continue
		}

		hashedPassword, err := sec.HashPassword(declared.Password)
		if err != nil {
			return created, fmt.Errorf("auth_seed_hash_failed: %w", err)
		}

		role, _ := sec.ParseUserRole(declared.Role)
		user := &User{
			ID:           uuid.New(),
			Username:     declared.Username,
			Email:        email,
			PasswordHash: hashedPassword,
			FullName:     declared.FullName,
			Role:         role,
			Status:       sec.StatusActive,
			IsVerified:   true,
		}

		entry := audit.Entry{
			UserID:  user.ID,
			Action:  audit.ActionUserCreated,
			Details: map[string]any{FieldUsername: user.Username, "role": string(role), "source": "seed"},
		}
		if err := users.Register(context, user, entry); err != nil {
			return created, err
		}

		created++
		logger.Info("user_seeded", slog.String("user_id", user.ID), slog.String("role", string(role)))
	}

	return created, nil
}

func seedExists(context context.Context, users UserRepository, email, username string) (bool, error) {
	if _, err := users.FindByEmail(context, email); err == nil {
		return true, nil
	} else if !apperr.IsNotFound(err) {
		return false, err
	}

	if _, err := users.FindByUsername(context, username); err == nil {
		return true, nil
	} else if !apperr.IsNotFound(err) {
		return false, err
	}

	return false, nil
}
