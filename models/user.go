package models

type User struct {
	ID           int    `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`
}

// FullName is what the profile page shows as the heading.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
