package model

import "time"

// Person is a person entity referenced by event participant sets.
type Person struct {
	ID        Ref       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a login identity linked 1:1 to a Person.
type Account struct {
	ID        Ref       `json:"id"`
	Person    Ref       `json:"person"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
