package models

import "time"

// Confession is one archived anonymous post. AuthorID is never shown
// publicly; it exists only for the admin audit trail. Number is the public
// sequence number ("Anonymous Confession #N") and is 0 for replies.
type Confession struct {
	ID        string    `json:"id"`
	Number    int64     `json:"number"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Reply     bool      `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}
