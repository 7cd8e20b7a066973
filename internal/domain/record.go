package domain

import "time"

// Record holds the server-assigned fields shared by every user-owned row.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) Meta() *Record {
	return r
}
