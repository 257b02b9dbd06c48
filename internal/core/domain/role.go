package domain

import "time"

// Role is a named collection of permission identifiers. Roles are referenced
// by id from user records and fetched on demand, so editing a role takes
// effect on the next request without rewriting any user.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ref returns the reference form of the role.
func (r *Role) Ref() *RoleRef {
	if r == nil {
		return nil
	}
	return &RoleRef{ID: r.ID, Name: r.Name}
}
