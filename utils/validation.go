package utils

import (
	netmail "net/mail"
	"strings"
)

// FieldErrors maps a form field name to the message shown next to it. An
// empty map means the form is valid.
type FieldErrors map[string]string

// RegisterForm is the typed input for user registration.
type RegisterForm struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// LoginForm is the typed input for authentication.
type LoginForm struct {
	Username string
	Password string
}

// FeedbackForm is the typed input for creating or updating feedback.
type FeedbackForm struct {
	Title   string
	Content string
}

func (f RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Username) == "" {
		errs["username"] = "Username is required"
	} else if len(f.Username) > 20 {
		errs["username"] = "Username must be at most 20 characters"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	} else if len(f.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters long"
	}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email is required"
	} else if err := ValidateEmail(f.Email); err != nil {
		errs["email"] = "Email must be a valid address"
	}
	if strings.TrimSpace(f.FirstName) == "" {
		errs["first_name"] = "First name is required"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs["last_name"] = "Last name is required"
	}
	return errs
}

func (f LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Username) == "" {
		errs["username"] = "Username is required"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

func (f FeedbackForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Title is required"
	} else if len(f.Title) > 100 {
		errs["title"] = "Title must be at most 100 characters"
	}
	if strings.TrimSpace(f.Content) == "" {
		errs["content"] = "Content is required"
	}
	return errs
}

func ValidateEmail(email string) error {
	_, err := netmail.ParseAddress(email)

	return err
}
