package model

import (
	"time"

	"github.com/google/uuid"
)

// TxKind tags the variant of a transaction.
type TxKind string

const (
	TxCreate TxKind = "create"
	TxUpdate TxKind = "update"
	TxRemove TxKind = "remove"
)

// Transaction is an immutable record of one create/update/remove operation on
// a document. Transactions are the sole unit of mutation: triggers never
// write documents, they emit further transactions for the pipeline to apply.
type Transaction struct {
	ID          Ref    `json:"id"`
	Kind        TxKind `json:"kind"`
	Actor       Ref    `json:"actor"`
	ObjectID    Ref    `json:"object_id"`
	ObjectClass Class  `json:"object_class"`

	// Attachment context for collection-scoped creates (an event living in
	// the collection of a parent record).
	AttachedTo      Ref    `json:"attached_to,omitempty"`
	AttachedToClass Class  `json:"attached_to_class,omitempty"`
	Collection      string `json:"collection,omitempty"`

	// Document holds the full payload for creates (*Event, *Calendar or
	// *Account depending on ObjectClass).
	Document any `json:"document,omitempty"`

	// Operations holds the changed field set for updates, keyed by field
	// name ("title", "visibility", "participants", ...).
	Operations map[string]any `json:"operations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EventPayload returns the event document carried by a create transaction.
func (t Transaction) EventPayload() (*Event, bool) {
	ev, ok := t.Document.(*Event)
	return ev, ok
}

// CalendarPayload returns the calendar document carried by a create transaction.
func (t Transaction) CalendarPayload() (*Calendar, bool) {
	c, ok := t.Document.(*Calendar)
	return c, ok
}

// AccountPayload returns the account document carried by a create transaction.
func (t Transaction) AccountPayload() (*Account, bool) {
	a, ok := t.Document.(*Account)
	return a, ok
}

// NewRef returns a fresh random document reference.
func NewRef() Ref {
	return Ref(uuid.NewString())
}

// personalCalendarNS namespaces the deterministic personal-calendar ids so a
// replayed account-creation transaction produces the same calendar id and
// trips the store's uniqueness constraint instead of duplicating.
var personalCalendarNS = uuid.MustParse("8f2f3a46-0b7c-4b4e-9a56-31cfca3bfb2d")

// PersonalCalendarID derives the id of an account's personal calendar from
// the account id.
func PersonalCalendarID(account Ref) Ref {
	return Ref(uuid.NewSHA1(personalCalendarNS, []byte(account)).String())
}

// NewCreateTx builds a create transaction for a standalone document.
func NewCreateTx(actor, objectID Ref, class Class, doc any) Transaction {
	return Transaction{
		ID:          NewRef(),
		Kind:        TxCreate,
		Actor:       actor,
		ObjectID:    objectID,
		ObjectClass: class,
		Document:    doc,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewCollectionCreateTx builds a create transaction for an event scoped as a
// child of its parent record's collection.
func NewCollectionCreateTx(actor Ref, ev *Event) Transaction {
	tx := NewCreateTx(actor, ev.ID, ClassEvent, ev)
	tx.AttachedTo = ev.AttachedTo
	tx.AttachedToClass = ev.AttachedToClass
	tx.Collection = ev.Collection
	return tx
}

// NewUpdateTx builds an update transaction carrying the changed field set.
func NewUpdateTx(actor, objectID Ref, class Class, ops map[string]any) Transaction {
	return Transaction{
		ID:          NewRef(),
		Kind:        TxUpdate,
		Actor:       actor,
		ObjectID:    objectID,
		ObjectClass: class,
		Operations:  ops,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewRemoveTx builds a remove transaction.
func NewRemoveTx(actor, objectID Ref, class Class) Transaction {
	return Transaction{
		ID:          NewRef(),
		Kind:        TxRemove,
		Actor:       actor,
		ObjectID:    objectID,
		ObjectClass: class,
		CreatedAt:   time.Now().UTC(),
	}
}
