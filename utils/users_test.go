package utils_test

import (
	"context"
	"errors"
	"testing"

	"opine/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newUserMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool error: %v", err)
	}
	return mock
}

func TestRegisterUser_Success(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", pgxmock.AnyArg(), "alice@example.com", "Alice", "Smith").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	form := utils.RegisterForm{
		Username:  "alice",
		Password:  "SecurePass123",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
	user, err := utils.RegisterUser(context.Background(), mock, form)
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "SecurePass123" {
		t.Fatalf("password was not hashed: %q", user.PasswordHash)
	}
	if !utils.CheckPasswordHash("SecurePass123", user.PasswordHash) {
		t.Fatal("stored hash should verify against the registration password")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", pgxmock.AnyArg(), "alice@example.com", "Alice", "Smith").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	form := utils.RegisterForm{
		Username:  "alice",
		Password:  "SecurePass123",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
	_, err := utils.RegisterUser(context.Background(), mock, form)
	if !errors.Is(err, utils.ErrDuplicateUsername) {
		t.Fatalf("want ErrDuplicateUsername, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAuthenticateUser_Success(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	hash, err := utils.HashPassword("SecurePass123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "email", "first_name", "last_name"}).
		AddRow(1, "alice", hash, "alice@example.com", "Alice", "Smith")
	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := utils.AuthenticateUser(context.Background(), mock, "alice", "SecurePass123")
	if err != nil {
		t.Fatalf("AuthenticateUser error: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

// A wrong password and an unknown username must be indistinguishable to the
// caller.
func TestAuthenticateUser_FailuresIndistinguishable(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	hash, err := utils.HashPassword("SecurePass123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "email", "first_name", "last_name"}).
		AddRow(1, "alice", hash, "alice@example.com", "Alice", "Smith")
	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(rows)

	_, wrongPassErr := utils.AuthenticateUser(context.Background(), mock, "alice", "WrongPass999")

	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, unknownUserErr := utils.AuthenticateUser(context.Background(), mock, "ghost", "SecurePass123")

	if !errors.Is(wrongPassErr, utils.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", wrongPassErr)
	}
	if !errors.Is(unknownUserErr, utils.ErrInvalidCredentials) {
		t.Fatalf("unknown username: want ErrInvalidCredentials, got %v", unknownUserErr)
	}
	if wrongPassErr.Error() != unknownUserErr.Error() {
		t.Fatalf("failure signals differ: %q vs %q", wrongPassErr, unknownUserErr)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	_, err := utils.GetUserByID(context.Background(), mock, 99)
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// Deleting a user removes the user row and all of its feedback in one
// transaction.
func TestDeleteUser_Cascade(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM feedback WHERE user_id`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM users WHERE id`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	if err := utils.DeleteUser(context.Background(), mock, 1); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteUser_NotFoundRollsBack(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM feedback WHERE user_id`).
		WithArgs(99).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM users WHERE id`).
		WithArgs(99).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := utils.DeleteUser(context.Background(), mock, 99)
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeOTP(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	otp := "reset-code"
	mock.ExpectQuery(`SELECT one_time_password FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"one_time_password"}).AddRow(&otp))
	mock.ExpectExec(`UPDATE users SET one_time_password = NULL`).
		WithArgs("alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := utils.ConsumeOTP(context.Background(), mock, "alice", "reset-code")
	if err != nil {
		t.Fatalf("ConsumeOTP error: %v", err)
	}
	if !ok {
		t.Fatal("matching code should be accepted")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeOTP_Mismatch(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	otp := "reset-code"
	mock.ExpectQuery(`SELECT one_time_password FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"one_time_password"}).AddRow(&otp))

	ok, err := utils.ConsumeOTP(context.Background(), mock, "alice", "wrong-code")
	if err != nil {
		t.Fatalf("ConsumeOTP error: %v", err)
	}
	if ok {
		t.Fatal("non-matching code should be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	mock := newUserMock(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(pgxmock.AnyArg(), "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := utils.ChangePassword(context.Background(), mock, "alice", "NewSecurePass123"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
}
