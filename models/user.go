package models

// UserProfile is the account identity returned by the backend on login.
// It is replaced wholesale on login or refresh, never patched field by field.
type UserProfile struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Firstname string   `json:"firstname,omitempty"`
	Lastname  string   `json:"lastname,omitempty"`
}

// Credential couples the access token with the profile it authorizes.
// The session manager is its only owner; it is created on login, rotated on
// refresh and destroyed on logout.
type Credential struct {
	Token      string      `json:"token"`
	User       UserProfile `json:"user"`
	Persistent bool        `json:"persistent"`
}
