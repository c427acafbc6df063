package domain

import "time"

// Board is a message board view model.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PostCount   int       `json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a message board post view model.
type Post struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote directions accepted by the upstream votes endpoint.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is the recorded vote returned by the upstream API.
type Vote struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}
