package user

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDTO struct {
	OrgID     string  `json:"org_id"`
	ManagerID *string `json:"manager_id,omitempty"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	OrgID     uuid.UUID   `json:"org_id"`
	ManagerID *uuid.UUID  `json:"manager_id,omitempty"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      Role        `json:"role"`
	Skills    []UserSkill `json:"skills,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
