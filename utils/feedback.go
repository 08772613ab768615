package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opine/models"

	"github.com/jackc/pgx/v5"
)

// CreateFeedback inserts a feedback row owned by ownerID. Input shape is
// validated by FeedbackForm.Validate before this is reached.
func CreateFeedback(ctx context.Context, db DBTX, title, content string, ownerID int) (*models.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fb := &models.Feedback{
		Title:   title,
		Content: content,
		UserID:  ownerID,
	}

	stmt := "INSERT INTO feedback (title, content, user_id) VALUES ($1, $2, $3) RETURNING id"
	if err := db.QueryRow(ctx, stmt, title, content, ownerID).Scan(&fb.ID); err != nil {
		return nil, fmt.Errorf("error inserting feedback: %w", err)
	}

	return fb, nil
}

func GetFeedbackByID(ctx context.Context, db DBTX, id int) (*models.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fb := &models.Feedback{}
	stmt := "SELECT id, title, content, user_id FROM feedback WHERE id = $1"
	err := db.QueryRow(ctx, stmt, id).Scan(&fb.ID, &fb.Title, &fb.Content, &fb.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}

	return fb, nil
}

// UpdateFeedback overwrites title and content. Ownership is checked by the
// caller against the session, not here.
func UpdateFeedback(ctx context.Context, db DBTX, fb *models.Feedback, title, content string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, "UPDATE feedback SET title = $1, content = $2 WHERE id = $3", title, content, fb.ID)
	if err != nil {
		return fmt.Errorf("error updating feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	fb.Title = title
	fb.Content = content
	return nil
}

func DeleteFeedback(ctx context.Context, db DBTX, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, "DELETE FROM feedback WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListAllFeedback returns every feedback row in the system. The profile page
// shows all feedback, not just the viewed user's; that matches the behavior
// this app replaces.
func ListAllFeedback(ctx context.Context, db DBTX) ([]models.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.Query(ctx, "SELECT id, title, content, user_id FROM feedback ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	feedback := []models.Feedback{}
	for rows.Next() {
		fb := models.Feedback{}
		if err := rows.Scan(&fb.ID, &fb.Title, &fb.Content, &fb.UserID); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		feedback = append(feedback, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading feedback rows: %w", err)
	}

	return feedback, nil
}
