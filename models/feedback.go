package models

type Feedback struct {
	ID      int    `db:"id"`
	Title   string `db:"title"`
	Content string `db:"content"`
	UserID  int    `db:"user_id"`
}
