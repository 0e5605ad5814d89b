package domain

import "time"

// ============================================================
// Users & authentication
// ============================================================

// User roles, ordered by capability.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// RoleAllows reports whether a user holding `have` may act as `want`.
func RoleAllows(have, want string) bool {
	rank := map[string]int{RoleViewer: 0, RoleEditor: 1, RoleAdmin: 2}
	h, okH := rank[have]
	w, okW := rank[want]
	return okH && okW && h >= w
}

// User is an authenticated member of a church's finance team.
type User struct {
	ID             string     `json:"id"`
	ChurchID       string     `json:"church_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	PasswordHash   string     `json:"-"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AuthRefreshToken is a stored (hashed) refresh token.
type AuthRefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// RegisterRequest creates a church together with its first (admin) user.
type RegisterRequest struct {
	ChurchName string `json:"church_name"`
	Currency   string `json:"currency,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
}

// RegisterResponse returns the created tenant and user.
type RegisterResponse struct {
	ChurchID string `json:"church_id"`
	UserID   string `json:"user_id"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a fresh token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	ChurchID     string `json:"church_id"`
	Role         string `json:"role"`
}

// RefreshRequest is the payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
