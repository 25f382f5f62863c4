package dto

import "github.com/campusdocs/doctrack-api/internal/models"

// CreateUserRequest registers a new account.
type CreateUserRequest struct {
	Email         string          `json:"email" validate:"required,email"`
	Password      string          `json:"password" validate:"required,min=6"`
	FullName      string          `json:"fullName" validate:"required"`
	Role          models.UserRole `json:"role" validate:"required"`
	DesignationID string          `json:"designationId"`
}
