package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"opine/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// RegisterUser hashes the password and inserts the user. A username
// collision surfaces as ErrDuplicateUsername; the insert is a single
// statement, so nothing is committed in that case.
func RegisterUser(ctx context.Context, db DBTX, f RegisterForm) (*models.User, error) {
	passwordHash, err := HashPassword(f.Password)
	if err != nil {
		log.Println("error hashing password", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	u := &models.User{
		Username:     f.Username,
		Email:        f.Email,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PasswordHash: passwordHash,
	}

	stmt := `INSERT INTO users (username, password_hash, email, first_name, last_name)
	         VALUES ($1, $2, $3, $4, $5)
	         RETURNING id`
	err = db.QueryRow(ctx, stmt, u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return u, nil
}

// AuthenticateUser looks the user up by username and verifies the password.
// An unknown username and a wrong password both come back as
// ErrInvalidCredentials so the caller can't tell which one it was.
func AuthenticateUser(ctx context.Context, db DBTX, username, password string) (*models.User, error) {
	u, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func GetUserByID(ctx context.Context, db DBTX, id int) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	u := &models.User{}
	stmt := `SELECT id, username, password_hash, email, first_name, last_name
	         FROM users WHERE id = $1`
	row := db.QueryRow(ctx, stmt, id)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return u, nil
}

func GetUserByUsername(ctx context.Context, db DBTX, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	u := &models.User{}
	stmt := `SELECT id, username, password_hash, email, first_name, last_name
	         FROM users WHERE username = $1`
	row := db.QueryRow(ctx, stmt, username)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return u, nil
}

// DeleteUser removes the user and every feedback row it owns in one
// transaction. Either both deletes commit or neither does.
func DeleteUser(ctx context.Context, db DBTX, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM feedback WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("error deleting user's feedback: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// SetOTP stores a password reset code on the user's row, replacing any
// previous one.
func SetOTP(ctx context.Context, db DBTX, userID int, otp string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, "UPDATE users SET one_time_password = $1 WHERE id = $2", otp, userID)
	if err != nil {
		return fmt.Errorf("error setting otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ConsumeOTP checks the submitted reset code against the stored one and
// clears it on a match, so a code can only be used once.
func ConsumeOTP(ctx context.Context, db DBTX, username, otp string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var stored *string
	row := db.QueryRow(ctx, "SELECT one_time_password FROM users WHERE username = $1", username)
	if err := row.Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("error querying otp: %w", err)
	}
	if stored == nil || *stored != otp {
		return false, nil
	}

	_, err := db.Exec(ctx, "UPDATE users SET one_time_password = NULL WHERE username = $1", username)
	if err != nil {
		return false, fmt.Errorf("error clearing otp: %w", err)
	}

	return true, nil
}

// ChangePassword rehashes and stores a new password for the user.
func ChangePassword(ctx context.Context, db DBTX, username, password string) error {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE username = $2", passwordHash, username)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
