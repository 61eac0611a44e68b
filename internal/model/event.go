package model

import "time"

// Event is a scheduled calendar item. All copies of one logical event share
// EventID; exactly one copy exists per participant, and only the copy with
// AccessOwner is ever edited directly.
type Event struct {
	ID              Ref        `json:"id"`
	EventID         string     `json:"event_id"`
	Calendar        Ref        `json:"calendar"`
	Access          Access     `json:"access"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	AllDay          bool       `json:"all_day"`
	Visibility      Visibility `json:"visibility"`
	Participants    []Ref      `json:"participants"`
	AttachedTo      Ref        `json:"attached_to"`
	AttachedToClass Class      `json:"attached_to_class"`
	Collection      string     `json:"collection"`
	CreatedBy       Ref        `json:"created_by"`
	ModifiedBy      Ref        `json:"modified_by"`
	CreatedAt       time.Time  `json:"created_at"`
	ModifiedAt      time.Time  `json:"modified_at"`
}

// HasParticipant reports whether the given person is in the participant set.
func (e *Event) HasParticipant(person Ref) bool {
	for _, p := range e.Participants {
		if p == person {
			return true
		}
	}
	return false
}
