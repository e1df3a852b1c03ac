package auth

import "time"

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a principal that can authenticate against the service.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	BirthDate    time.Time
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential tracks the store-side validity of one issued access token,
// independent of the token's own embedded expiry. Rows are flagged on
// revocation, never deleted.
type Credential struct {
	ID        string
	Token     string
	UserID    string
	Revoked   bool
	Expired   bool
	CreatedAt time.Time
}

// Usable reports whether the credential row still admits the token.
func (c Credential) Usable() bool {
	return !c.Revoked && !c.Expired
}

// TokenPair carries the two tokens returned by every successful
// register/authenticate/refresh call.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
