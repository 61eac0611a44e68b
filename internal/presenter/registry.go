// Package presenter maps document classes to renderer resources used to
// present an event in the context of the record it is attached to.
package presenter

import (
	"sync"

	"shadowcal/internal/model"
)

// Presenter renders an event against its parent record.
type Presenter interface {
	HTML(target *model.Card, ev *model.Event) (string, error)
	Text(target *model.Card, ev *model.Event) (string, error)
}

// Registry is a class → presenter lookup table.
type Registry struct {
	mu      sync.RWMutex
	byClass map[model.Class]Presenter
}

func NewRegistry() *Registry {
	return &Registry{byClass: make(map[model.Class]Presenter)}
}

// Default returns a registry with the built-in card presenter registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(model.ClassCard, CardPresenter{})
	return r
}

func (r *Registry) Register(class model.Class, p Presenter) {
	r.mu.Lock()
	r.byClass[class] = p
	r.mu.Unlock()
}

// Lookup returns the presenter registered for the class, if any.
func (r *Registry) Lookup(class model.Class) (Presenter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byClass[class]
	return p, ok
}
