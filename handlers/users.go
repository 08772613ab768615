package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"opine/models"
	"opine/utils"

	"github.com/redis/go-redis/v9"
)

func HomeHandler(w http.ResponseWriter, r *http.Request, redisClient *redis.Client) {
	flash := utils.PopFlash(w, r)
	sc := utils.CurrentSession(r, redisClient)

	renderPage(w, "home.html", models.HomePage{
		Flash:    flash,
		LoggedIn: sc.LoggedIn,
		UserID:   sc.UserID,
	})
}

// UserProfileHandler renders a profile. Any logged-in user may view any
// profile; anonymous visitors are bounced home with a flash message. The
// page lists every feedback entry in the system, not just this user's.
func UserProfileHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	sc := utils.CurrentSession(r, redisClient)
	if !sc.LoggedIn {
		utils.SetFlash(w, "Please login or sign up first!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, err := utils.GetUserByID(r.Context(), db, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Println("error loading user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	allFeedback, err := utils.ListAllFeedback(r.Context(), db)
	if err != nil {
		log.Println("error listing feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	csrfToken := ""
	if sc.Owns(user.ID) {
		if st, err := r.Cookie("session_token"); err == nil {
			csrfToken, _ = utils.GetCSRFFromST(redisClient, st.Value)
		}
	}

	renderPage(w, "user-profile.html", models.ProfilePage{
		User:        *user,
		AllFeedback: allFeedback,
		IsOwner:     sc.Owns(user.ID),
		CSRFToken:   csrfToken,
	})

	if st, err := r.Cookie("session_token"); err == nil {
		_ = utils.UpdateLastActivity(redisClient, st.Value)
	}
}

// DeleteUserHandler deletes the acting user's own account, cascading to all
// of their feedback, and destroys every session the account had open.
func DeleteUserHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sc := utils.CurrentSession(r, redisClient)
	if !sc.Owns(id) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := utils.Authorize(r, redisClient); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := utils.DeleteUser(r.Context(), db, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Println("error deleting user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := utils.DeleteAllUserSessions(redisClient, id); err != nil {
		log.Println("error deleting user sessions:", err)
	}
	utils.ClearSessionCookies(w)

	utils.SetFlash(w, "Your account has been deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
