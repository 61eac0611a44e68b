package model

// Ref is a document reference (opaque identifier).
type Ref string

// Class identifies a document class.
type Class string

const (
	ClassEvent    Class = "event"
	ClassCalendar Class = "calendar"
	ClassPerson   Class = "person"
	ClassAccount  Class = "account"
	ClassCard     Class = "card"
)

// Access marks who may edit an event copy.
type Access string

const (
	// AccessOwner marks the single source-of-truth copy held by the
	// creating/editing participant.
	AccessOwner Access = "owner"
	// AccessReader marks a derived copy held in another participant's calendar.
	AccessReader Access = "reader"
)

// Visibility controls how an event copy is shown to other users. It is local
// to each copy and never replicated.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityFreeBusy Visibility = "freeBusy"
	VisibilityPrivate  Visibility = "private"
)
