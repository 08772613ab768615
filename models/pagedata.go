package models

// HomePage is the data for the landing page.
type HomePage struct {
	Flash    string
	LoggedIn bool
	UserID   int
}

// AuthFormPage backs the register and login templates. Values holds the
// submitted fields so the form can be redisplayed, Errors holds per-field
// messages.
type AuthFormPage struct {
	Values map[string]string
	Errors map[string]string
}

// ProfilePage backs the user profile template.
type ProfilePage struct {
	User        User
	AllFeedback []Feedback
	IsOwner     bool
	CSRFToken   string
}

// FeedbackFormPage backs the feedback add/edit templates.
type FeedbackFormPage struct {
	User      User
	Feedback  Feedback
	Errors    map[string]string
	CSRFToken string
}

// ResetPage backs the password reset templates.
type ResetPage struct {
	Username string
	Error    string
}
