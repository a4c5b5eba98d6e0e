package domain

import (
	"strings"
	"time"
)

// Role is a named permission group.
type Role struct {
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeRoleName returns the uniqueness key for a role name.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
