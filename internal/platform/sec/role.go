// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// UserRole represents the global authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including user administration
	RoleAdmin UserRole = "admin"

	// Can manage stock, distribution and read every report
	RoleManager UserRole = "manager"

	// Can approve spoilage records and supervise operators
	RoleSupervisor UserRole = "supervisor"

	// Records day-to-day inventory movements
	RoleOperator UserRole = "operator"

	// Read-only access
	RoleViewer UserRole = "viewer"
)

// AllRoles lists every valid global role, highest first.
var AllRoles = []UserRole{RoleAdmin, RoleManager, RoleSupervisor, RoleOperator, RoleViewer}

// ParseUserRole converts raw input into a [UserRole], rejecting unknown values.
func ParseUserRole(raw string) (UserRole, error) {
	role := UserRole(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown user role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r UserRole) Valid() bool {
	return r.In(AllRoles...)
}

// In reports whether r is a member of the allowed set.
//
// Membership is exact: a higher role does not implicitly satisfy a set that does
// not name it.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// # Account Status

// UserStatus is the soft-delete flag of an account.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// ParseUserStatus converts raw input into a [UserStatus].
func ParseUserStatus(raw string) (UserStatus, error) {
	switch status := UserStatus(raw); status {
	case StatusActive, StatusInactive:
		return status, nil
	default:
		return "", fmt.Errorf("sec: unknown user status %q", raw)
	}
}

// # Resource Roles

// ParticipantRole is a resource-scoped role binding a user to one chat session.
type ParticipantRole string

const (
	ParticipantOwner  ParticipantRole = "owner"
	ParticipantMember ParticipantRole = "participant"
)

// ParseParticipantRole converts raw input into a [ParticipantRole].
func ParseParticipantRole(raw string) (ParticipantRole, error) {
	switch role := ParticipantRole(raw); role {
	case ParticipantOwner, ParticipantMember:
		return role, nil
	default:
		return "", fmt.Errorf("sec: unknown participant role %q", raw)
	}
}

// In reports whether r is a member of the allowed set. An empty set allows any
// valid binding.
func (r ParticipantRole) In(allowed ...ParticipantRole) bool {
	if len(allowed) == 0 {
		return r == ParticipantOwner || r == ParticipantMember
	}
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}
