package utils_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opine/models"
	"opine/utils"

	"github.com/go-redis/redismock/v9"
)

func TestCookieExists(t *testing.T) {
	tests := []struct {
		name       string
		setupReq   func() *http.Request
		cookieName string
		want       bool
	}{
		{
			name: "Cookie exists with value",
			setupReq: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.AddCookie(&http.Cookie{Name: "session_token", Value: "abc123"})
				return req
			},
			cookieName: "session_token",
			want:       true,
		},
		{
			name: "Cookie exists but empty value",
			setupReq: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.AddCookie(&http.Cookie{Name: "session_token", Value: ""})
				return req
			},
			cookieName: "session_token",
			want:       false,
		},
		{
			name: "Cookie doesn't exist",
			setupReq: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/", nil)
			},
			cookieName: "session_token",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.setupReq()
			if got := utils.CookieExists(req, tt.cookieName); got != tt.want {
				t.Errorf("CookieExists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionContextOwns(t *testing.T) {
	tests := []struct {
		name    string
		ctx     models.SessionContext
		ownerID int
		want    bool
	}{
		{
			name:    "Owner may act on their own resource",
			ctx:     models.SessionContext{UserID: 1, LoggedIn: true},
			ownerID: 1,
			want:    true,
		},
		{
			name:    "Authenticated non-owner may not",
			ctx:     models.SessionContext{UserID: 2, LoggedIn: true},
			ownerID: 1,
			want:    false,
		},
		{
			name:    "Anonymous may not",
			ctx:     models.SessionContext{},
			ownerID: 1,
			want:    false,
		},
		{
			name:    "Anonymous context with matching zero id may not",
			ctx:     models.SessionContext{UserID: 0},
			ownerID: 0,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.Owns(tt.ownerID); got != tt.want {
				t.Errorf("Owns(%d) = %v, want %v", tt.ownerID, got, tt.want)
			}
		})
	}
}

func TestCurrentSession(t *testing.T) {
	t.Run("No cookie resolves to anonymous", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		sc := utils.CurrentSession(req, client)
		if sc.LoggedIn {
			t.Errorf("expected anonymous context, got %+v", sc)
		}
	})

	t.Run("Unknown token resolves to anonymous", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectHGet("session:ghost", "user_id").RedisNil()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "ghost"})

		sc := utils.CurrentSession(req, client)
		if sc.LoggedIn {
			t.Errorf("expected anonymous context, got %+v", sc)
		}
	})

	t.Run("Known token resolves to its user", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectHGet("session:tok", "user_id").SetVal("7")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})

		sc := utils.CurrentSession(req, client)
		if !sc.LoggedIn || sc.UserID != 7 {
			t.Errorf("expected user 7, got %+v", sc)
		}
	})
}

func TestAuthorize(t *testing.T) {
	t.Run("Matching form token passes", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectHGet("session:tok", "csrf_token").SetVal("csrf-1")

		form := strings.NewReader("csrf_token=csrf-1")
		req := httptest.NewRequest(http.MethodPost, "/", form)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})

		if err := utils.Authorize(req, client); err != nil {
			t.Errorf("Authorize() error = %v, want nil", err)
		}
	})

	t.Run("Matching header token passes", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectHGet("session:tok", "csrf_token").SetVal("csrf-1")

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", "csrf-1")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})

		if err := utils.Authorize(req, client); err != nil {
			t.Errorf("Authorize() error = %v, want nil", err)
		}
	})

	t.Run("Wrong token is denied", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectHGet("session:tok", "csrf_token").SetVal("csrf-1")

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", "csrf-2")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})

		if err := utils.Authorize(req, client); err != utils.ErrUnauthorized {
			t.Errorf("Authorize() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("Missing session cookie is denied", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", "csrf-1")

		if err := utils.Authorize(req, client); err != utils.ErrUnauthorized {
			t.Errorf("Authorize() error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.SetFlash(rec, "Please login or sign up first!")

	// Carry the cookie over to the next request, the way a browser would.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	if got := utils.PopFlash(rec2, req); got != "Please login or sign up first!" {
		t.Errorf("PopFlash() = %q, want the flashed message", got)
	}

	// PopFlash must clear the cookie.
	cleared := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("PopFlash() should expire the flash cookie")
	}
}

func TestPopFlashEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if got := utils.PopFlash(rec, req); got != "" {
		t.Errorf("PopFlash() = %q, want empty", got)
	}
}
