// Package models defines the client-side data models of docchat.
package models

// User is the profile snapshot persisted next to the credential.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Session is the authenticated state of the client. It exists only while
// the credential is valid. User is nil for a credential-only session whose
// profile has not been fetched yet.
type Session struct {
	Token string
	User  *User
}

// Hydrated reports whether the profile snapshot is known.
func (s *Session) Hydrated() bool {
	return s != nil && s.User != nil
}

func (s *Session) IsAdmin() bool {
	return s.Hydrated() && s.User.IsAdmin
}

func (s *Session) Username() string {
	if !s.Hydrated() {
		return ""
	}
	return s.User.Username
}
