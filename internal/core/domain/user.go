package domain

import "time"

// RoleRef is the role reference carried on a user record and inside token
// claims. It identifies a role without embedding its permission set;
// permissions are always resolved live from the role store.
//
// A nil *RoleRef means the user has no role assigned. A RoleRef with an
// empty ID is treated the same way by the resolver.
type RoleRef struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

// User models an identity record. The password hash and the refresh token
// never leave the process in API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         *RoleRef  `json:"role"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthenticatedUser is the request-scoped identity produced by the token
// validation gate and returned by account lookups. Permissions reflect the
// role store at resolution time, not at token issuance time.
type AuthenticatedUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        *RoleRef `json:"role"`
	Permissions []string `json:"permissions"`
}
