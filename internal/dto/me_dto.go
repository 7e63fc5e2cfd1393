package dto

import "github.com/google/uuid"

type MeResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image string    `json:"image"`
	Role  string    `json:"role"`
}
