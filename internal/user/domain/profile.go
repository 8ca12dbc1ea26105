package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Role is the actor kind recorded on a profile.
type Role string

const (
	RoleCollector Role = "collector"
	RoleDesigner  Role = "designer"
	RoleAdmin     Role = "admin"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the identity record the core reads for authorization checks.
// Registration and profile editing live outside this service.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
}
