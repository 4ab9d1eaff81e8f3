// Package model defines domain entities for the application.
package model

import "time"

// Role is the coarse-grained permission tier assigned to a user.
type Role string

// Valid roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is a recognized value.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Measurement unit systems for user preferences.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Preferences holds per-user display settings.
// Partial updates merge into the stored value rather than replacing it.
type Preferences struct {
	DefaultCountry string `json:"defaultCountry,omitempty"`
	Units          string `json:"units,omitempty"`
	Notifications  *bool  `json:"notifications,omitempty"`
}

// Merge applies the set fields of p onto base and returns the result.
func (p Preferences) Merge(base Preferences) Preferences {
	out := base
	if p.DefaultCountry != "" {
		out.DefaultCountry = p.DefaultCountry
	}
	if p.Units != "" {
		out.Units = p.Units
	}
	if p.Notifications != nil {
		out.Notifications = p.Notifications
	}
	return out
}

// User represents an EcoLens account.
// PasswordHash is never serialized and is only populated by the
// credential-verification lookup.
type User struct {
	ID           string      `json:"userId"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	IsActive     bool        `json:"isActive"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
}

// Identity is the resolved authenticated principal attached to a request
// context by the auth middleware. It is re-resolved from the user store on
// every request so deactivation and role changes take effect immediately.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// HasRole reports whether the identity's role is in the allow-list.
func (i *Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Profile is the client-facing view of a user, mirroring the shape returned
// by GET /api/user/me.
type Profile struct {
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
}

// ToProfile converts a User to its client-facing profile view.
func (u *User) ToProfile() Profile {
	return Profile{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}
