package model

import "time"

// Card is a parent record events can be attached to. Its Content field holds
// markdown used by the HTML presenter.
type Card struct {
	ID        Ref       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
