package models

// Session is the server-side session state kept in Redis, keyed by the
// session token held in the client's cookie.
type Session struct {
	SessionToken string `json:"session_token"`
	UserID       int    `json:"user_id"`
	CreatedAt    string `json:"created_at"`
	ExpiresAt    string `json:"expires_at"`
	LastActivity string `json:"last_activity"`
	CSRFToken    string `json:"csrf_token"`
	UserAgent    string `json:"user_agent"`
	IPAddress    string `json:"ip_address"`
}

// SessionContext is the acting user resolved from an inbound request's
// session cookie. The zero value means anonymous. Authorization checks are
// plain functions of this value and the resource's owner, never of ambient
// state.
type SessionContext struct {
	UserID   int
	LoggedIn bool
}

// Owns reports whether the acting user is the owner of a resource. Anonymous
// contexts own nothing.
func (s SessionContext) Owns(ownerID int) bool {
	return s.LoggedIn && s.UserID == ownerID
}
