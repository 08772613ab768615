package utils

import (
	"net/http"
	"net/url"
	"time"

	"opine/models"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 24 * time.Hour

func CookieExists(r *http.Request, name string) bool {
	st, err := r.Cookie(name)
	return err == nil && st.Value != ""
}

// GetUserAgent returns the User-Agent string from the request
func GetUserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// GetIP returns the IP address of the client from the request
func GetIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

// OpenSession establishes a logged-in session for the user: fresh session
// and CSRF tokens, cookies on the response, session state in Redis.
func OpenSession(w http.ResponseWriter, r *http.Request, client *redis.Client, userID int) error {
	sessionToken := NewSessionToken()
	csrfToken := GenerateToken(32)

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    sessionToken,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "csrf_token",
		Value:    csrfToken,
		HttpOnly: false, // read by the form scripts
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
	})

	now := time.Now()
	session := models.Session{
		SessionToken: sessionToken,
		UserID:       userID,
		CreatedAt:    now.Format(time.RFC3339),
		ExpiresAt:    now.Add(sessionTTL).Format(time.RFC3339),
		LastActivity: now.Format(time.RFC3339),
		CSRFToken:    csrfToken,
		UserAgent:    GetUserAgent(r),
		IPAddress:    GetIP(r),
	}

	return StoreSession(client, session, sessionTTL)
}

// CloseSession clears the session cookies and drops the session from Redis.
func CloseSession(w http.ResponseWriter, r *http.Request, client *redis.Client) {
	if CookieExists(r, "session_token") {
		st, _ := r.Cookie("session_token")
		_ = DeleteSession(client, st.Value)
	}
	ClearSessionCookies(w)
}

func ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "csrf_token",
		Value:    "",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// CurrentSession resolves the request's session cookie to the acting user.
// Any failure along the way (no cookie, unknown or expired token) yields the
// anonymous context.
func CurrentSession(r *http.Request, client *redis.Client) models.SessionContext {
	st, err := r.Cookie("session_token")
	if err != nil || st.Value == "" {
		return models.SessionContext{}
	}

	userID, err := GetUserIDFromST(client, st.Value)
	if err != nil {
		return models.SessionContext{}
	}

	return models.SessionContext{UserID: userID, LoggedIn: true}
}

// Authorize verifies the CSRF token on a mutating request against the one
// stored in the session. The token may arrive as a form field or in the
// X-CSRF-Token header.
func Authorize(r *http.Request, client *redis.Client) error {
	st, err := r.Cookie("session_token")
	if err != nil || st.Value == "" {
		return ErrUnauthorized
	}

	expected, err := GetCSRFFromST(client, st.Value)
	if err != nil || expected == "" {
		return ErrUnauthorized
	}

	csrf := r.Header.Get("X-CSRF-Token")
	if csrf == "" {
		csrf = r.FormValue("csrf_token")
	}
	if csrf != expected {
		return ErrUnauthorized
	}

	return nil
}

// SetFlash queues a one-shot message for the next rendered page.
func SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// PopFlash returns the pending flash message, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "flash",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
