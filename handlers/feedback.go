package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"opine/models"
	"opine/utils"

	"github.com/redis/go-redis/v9"
)

func sessionCSRF(r *http.Request, redisClient *redis.Client) string {
	st, err := r.Cookie("session_token")
	if err != nil {
		return ""
	}
	token, _ := utils.GetCSRFFromST(redisClient, st.Value)
	return token
}

// AddFeedbackHandler lets a user add feedback to their own profile. Anyone
// else, logged in or not, gets an access denial.
func AddFeedbackHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sc := utils.CurrentSession(r, redisClient)
	if !sc.Owns(userID) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := utils.GetUserByID(r.Context(), db, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Println("error loading user:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		renderPage(w, "feedback-new.html", models.FeedbackFormPage{
			User:      *user,
			CSRFToken: sessionCSRF(r, redisClient),
		})
		return
	}

	if err := utils.Authorize(r, redisClient); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form := utils.FeedbackForm{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		renderPage(w, "feedback-new.html", models.FeedbackFormPage{
			User:      *user,
			Feedback:  models.Feedback{Title: form.Title, Content: form.Content},
			Errors:    errs,
			CSRFToken: sessionCSRF(r, redisClient),
		})
		return
	}

	if _, err := utils.CreateFeedback(r.Context(), db, form.Title, form.Content, userID); err != nil {
		log.Println("error creating feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", userID), http.StatusSeeOther)
}

// UpdateFeedbackHandler edits a feedback entry. Only its owner may.
func UpdateFeedbackHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	fb, err := utils.GetFeedbackByID(r.Context(), db, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Println("error loading feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sc := utils.CurrentSession(r, redisClient)
	if !sc.Owns(fb.UserID) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		renderPage(w, "feedback-edit.html", models.FeedbackFormPage{
			Feedback:  *fb,
			CSRFToken: sessionCSRF(r, redisClient),
		})
		return
	}

	if err := utils.Authorize(r, redisClient); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form := utils.FeedbackForm{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		renderPage(w, "feedback-edit.html", models.FeedbackFormPage{
			Feedback:  models.Feedback{ID: fb.ID, Title: form.Title, Content: form.Content, UserID: fb.UserID},
			Errors:    errs,
			CSRFToken: sessionCSRF(r, redisClient),
		})
		return
	}

	if err := utils.UpdateFeedback(r.Context(), db, fb, form.Title, form.Content); err != nil {
		log.Println("error updating feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", fb.UserID), http.StatusSeeOther)
}

// DeleteFeedbackHandler removes a feedback entry. Only its owner may.
func DeleteFeedbackHandler(w http.ResponseWriter, r *http.Request, db utils.DBTX, redisClient *redis.Client) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	fb, err := utils.GetFeedbackByID(r.Context(), db, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Println("error loading feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sc := utils.CurrentSession(r, redisClient)
	if !sc.Owns(fb.UserID) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := utils.Authorize(r, redisClient); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := utils.DeleteFeedback(r.Context(), db, id); err != nil {
		log.Println("error deleting feedback:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", fb.UserID), http.StatusSeeOther)
}
