package model

import "time"

// Role is a named permission group. Names are unique.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AddRoleRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}
