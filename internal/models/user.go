package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch is the self-service update payload. Password is plaintext here and
// must be hashed by the caller before it reaches the store.
type UserPatch struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UserAdminPatch carries the flags only an administrator may change.
type UserAdminPatch struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

// Apply copies the profile fields present in p onto u. The password hash is
// supplied separately so plaintext never lands on the record.
func (p UserPatch) Apply(u *User, passwordHash string) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil && passwordHash != "" {
		u.PasswordHash = passwordHash
	}
}

func (p UserAdminPatch) Apply(u *User) {
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
