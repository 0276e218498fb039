// Package state holds the authoritative, in-memory list of board projects and notifies
// subscribed views whenever it changes.
package state

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/projboard/projboard/pkg/types"
)

// Listener receives a private copy of the full project sequence after every change.
type Listener func(projects []types.Project)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default ULID-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// Store is the single owner of the board's projects.
//
// Mutations and their notifications are serialized: listeners observe snapshots in mutation
// order, and a listener must never call AddProject or MoveProject (it would deadlock).
// Listeners may read from the store and may subscribe further listeners.
type Store struct {
	// notifyMu serializes a mutation together with its notification round.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	projects  []types.Project
	listeners []Listener

	newID func() string
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{newID: newProjectID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newProjectID() string {
	return fmt.Sprintf("prj_%s", ulid.Make().String())
}

// Subscribe registers a listener for every subsequent change.
// Existing state is not replayed and there is no way to unsubscribe.
func (s *Store) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// AddProject appends a new active project and notifies listeners.
// Fields are stored as given; callers validate before calling.
func (s *Store) AddProject(title, description string, people int) types.Project {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	p := types.Project{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		People:      people,
		Status:      types.StatusActive,
	}
	s.projects = append(s.projects, p)
	snapshot, listeners := s.projects, slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot)
	return p
}

// MoveProject sets the status of the project with the given id.
// It reports whether anything changed; an unknown id or an unchanged status is a silent no-op
// and does not notify listeners.
func (s *Store) MoveProject(id string, status types.ProjectStatus) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	i := slices.IndexFunc(s.projects, func(p types.Project) bool { return p.ID == id })
	if i < 0 || s.projects[i].Status == status {
		s.mu.Unlock()
		return false
	}
	s.projects[i].Status = status
	snapshot, listeners := s.projects, slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// notify calls each listener in registration order with its own copy of projects.
// projects is only read here; it cannot change underneath because notifyMu is held.
// A panicking listener stops the round.
func notify(listeners []Listener, projects []types.Project) {
	for _, fn := range listeners {
		fn(slices.Clone(projects))
	}
}

// Projects returns a copy of the current project sequence.
func (s *Store) Projects() []types.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Get returns the project with the given id.
func (s *Store) Get(id string) (types.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return types.Project{}, false
}

// Len returns the number of projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
