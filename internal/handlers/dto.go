package handlers

import (
	"time"

	"mindguard/internal/models"
)

// UserDTO keeps joined_at a consistent RFC3339 string on the wire.
type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joinedAt"`
	Avatar   string `json:"avatar,omitempty"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		JoinedAt: u.JoinedAt.Format(time.RFC3339),
		Avatar:   u.Avatar,
	}
}
