package model

import "github.com/google/uuid"

type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleEngineer Role = "ENGINEER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID   uuid.UUID
	FullName string
	Role     Role
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}

func (p Principal) IsEngineer() bool {
	return p.Role == RoleEngineer
}
