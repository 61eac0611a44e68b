package model

import "time"

// Calendar is a named container of events owned by one person's account.
// External calendars imported from another provider may be flagged Default,
// which makes them the preferred replication target for that account.
type Calendar struct {
	ID         Ref        `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Default    bool       `json:"default"`
	Visibility Visibility `json:"visibility"`
	CreatedBy  Ref        `json:"created_by"`
	ModifiedBy Ref        `json:"modified_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}
