package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"opine/models"
	"opine/utils"

	"github.com/redis/go-redis/v9"
)

func renderPage(w http.ResponseWriter, file string, data any) {
	tmpl, err := template.ParseFiles("./ui/html/" + file)
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template: "+err.Error(), http.StatusInternalServerError)
	}
}

// RegisterHandler shows the registration form and creates the account on
// submit. A taken username redisplays the form with a field error; success
// opens a session and redirects to the new profile.
func RegisterHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	if r.Method != http.MethodPost {
		renderPage(w, "register.html", models.AuthFormPage{})
		return
	}

	form := utils.RegisterForm{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}
	values := map[string]string{
		"username":   form.Username,
		"email":      form.Email,
		"first_name": form.FirstName,
		"last_name":  form.LastName,
	}

	if errs := form.Validate(); len(errs) > 0 {
		renderPage(w, "register.html", models.AuthFormPage{Values: values, Errors: errs})
		return
	}

	user, err := utils.RegisterUser(r.Context(), db, form)
	if err != nil {
		if errors.Is(err, utils.ErrDuplicateUsername) {
			errs := utils.FieldErrors{"username": "Oh no! Username taken. Try something different."}
			renderPage(w, "register.html", models.AuthFormPage{Values: values, Errors: errs})
			return
		}
		log.Println("error registering user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := utils.OpenSession(w, r, redisClient, user.ID); err != nil {
		log.Println("error opening session:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusSeeOther)
}

// LoginHandler authenticates and opens a session. An unknown username and a
// wrong password produce the same generic message.
func LoginHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	if r.Method != http.MethodPost {
		renderPage(w, "login.html", models.AuthFormPage{})
		return
	}

	form := utils.LoginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	values := map[string]string{"username": form.Username}

	if errs := form.Validate(); len(errs) > 0 {
		renderPage(w, "login.html", models.AuthFormPage{Values: values, Errors: errs})
		return
	}

	user, err := utils.AuthenticateUser(r.Context(), db, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			errs := utils.FieldErrors{"username": "Invalid username/password."}
			renderPage(w, "login.html", models.AuthFormPage{Values: values, Errors: errs})
			return
		}
		log.Println("error authenticating user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := utils.OpenSession(w, r, redisClient, user.ID); err != nil {
		log.Println("error opening session:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusSeeOther)
}

func LogOutHandler(w http.ResponseWriter, r *http.Request, redisClient *redis.Client) {
	utils.CloseSession(w, r, redisClient)
	utils.SetFlash(w, "Goodbye!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "forgot-password.html", models.ResetPage{})
}

// SendResetEmailHandler generates a reset code, stores it on the account and
// mails it. It redirects to the verify form either way so the response does
// not reveal whether the username exists.
func SendResetEmailHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX) {
	username := r.FormValue("username")
	if username == "" {
		renderPage(w, "forgot-password.html", models.ResetPage{Error: "Username is required"})
		return
	}

	user, err := utils.GetUserByUsername(r.Context(), db, username)
	if err == nil {
		otp := utils.GenerateOTP()
		if err := utils.SetOTP(r.Context(), db, user.ID, otp); err != nil {
			log.Println("error setting reset code:", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if err := utils.SendOTP(user.Email, otp); err != nil {
			log.Println("error sending reset email for user:", username, "|error:", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	} else if !errors.Is(err, utils.ErrNotFound) {
		log.Println("error looking up user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "reset_user",
		Value:    username,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   600,
	})

	http.Redirect(w, r, "/forgot-password/verify", http.StatusSeeOther)
}

// VerifyResetHandler checks the emailed code. A match clears the code and
// hands out a short-lived token that authorizes the password change.
func VerifyResetHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	var username string
	if c, err := r.Cookie("reset_user"); err == nil {
		username = c.Value
	}

	if r.Method != http.MethodPost {
		renderPage(w, "verify-reset.html", models.ResetPage{Username: username})
		return
	}

	otp := r.FormValue("otp")
	ok, err := utils.ConsumeOTP(r.Context(), db, username, otp)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		log.Println("error verifying reset code:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		renderPage(w, "verify-reset.html", models.ResetPage{Username: username, Error: "Invalid or expired code"})
		return
	}

	token := utils.GenerateToken(32)
	if err := utils.StoreResetToken(redisClient, token, username, 10*time.Minute); err != nil {
		log.Println("error storing reset token:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "reset_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   600,
	})

	http.Redirect(w, r, "/forgot-password/change-password", http.StatusSeeOther)
}

// ChangePasswordHandler sets the new password for the account the verified
// reset token belongs to.
func ChangePasswordHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	c, err := r.Cookie("reset_token")
	if err != nil || c.Value == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username, err := utils.GetResetToken(redisClient, c.Value)
	if err != nil {
		log.Println("error reading reset token:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if username == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		renderPage(w, "change-password.html", models.ResetPage{Username: username})
		return
	}

	password := r.FormValue("password")
	if len(password) < 8 {
		renderPage(w, "change-password.html", models.ResetPage{
			Username: username,
			Error:    "Password must be at least 8 characters long",
		})
		return
	}

	if err := utils.ChangePassword(r.Context(), db, username, password); err != nil {
		log.Println("error changing password for user:", username, "|error:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	_ = utils.DeleteResetToken(redisClient, c.Value)
	http.SetCookie(w, &http.Cookie{Name: "reset_token", Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "reset_user", Value: "", Path: "/", MaxAge: -1})

	utils.SetFlash(w, "Password updated. Please log in.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
