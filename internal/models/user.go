package models

import "strings"

// Role is the user's permission group
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleTester    Role = "TESTER"
	RoleUser      Role = "USER"
)

// User is an entry in the user directory.
// Email is a pointer so a missing address can be told apart from a blank one.
type User struct {
	ID    string  `json:"id" toml:"id" yaml:"id"`
	Name  string  `json:"name" toml:"name" yaml:"name"`
	Email *string `json:"email,omitempty" toml:"email" yaml:"email"`
	Phone string  `json:"phone,omitempty" toml:"phone" yaml:"phone"`
	Role  Role    `json:"role" toml:"role" yaml:"role" badgerhold:"index"`
}

// ContactEmail returns the trimmed email and whether it is usable
func (u *User) ContactEmail() (string, bool) {
	if u == nil || u.Email == nil {
		return "", false
	}
	email := strings.TrimSpace(*u.Email)
	return email, email != ""
}
