package view

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/logging"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/pkg/types"
)

//go:embed templates/board.html
var defaultTemplate []byte

// ErrUnknownProject is returned when a gesture names a project no list shows.
var ErrUnknownProject = errors.New("unknown project")

// BoardOption configures a Board.
type BoardOption func(*boardOptions)

type boardOptions struct {
	template []byte
}

// WithTemplate replaces the embedded board page.
func WithTemplate(html []byte) BoardOption {
	return func(o *boardOptions) {
		o.template = html
	}
}

// Board owns the board document, the input form and one list per status.
//
// Gestures (Submit, Move, StartDrag, Drop) run one at a time. Every store change re-renders the
// lists and is published on the bus as list.rendered followed by projects.updated, all carrying
// the same version.
type Board struct {
	gesture sync.Mutex

	doc   *Document
	store *state.Store
	bus   *event.Bus

	input *ProjectInput
	lists map[types.ProjectStatus]*ProjectList

	version atomic.Uint64
}

// NewBoard parses the board page and mounts every component. bus may be nil.
func NewBoard(store *state.Store, bus *event.Bus, opts ...BoardOption) (*Board, error) {
	o := boardOptions{template: defaultTemplate}
	for _, opt := range opts {
		opt(&o)
	}

	doc, err := ParseDocument(bytes.NewReader(o.template))
	if err != nil {
		return nil, err
	}

	b := &Board{
		doc:   doc,
		store: store,
		bus:   bus,
		lists: make(map[types.ProjectStatus]*ProjectList, len(types.Statuses)),
	}

	// Listeners run in subscription order: the version is bumped before the lists render and
	// the snapshot is published after both have.
	store.Subscribe(b.beginRound)

	if b.input, err = NewProjectInput(doc, store); err != nil {
		return nil, fmt.Errorf("mount project input: %w", err)
	}
	for _, status := range types.Statuses {
		list, err := NewProjectList(doc, store, status, b.listRendered)
		if err != nil {
			return nil, fmt.Errorf("mount %s list: %w", status, err)
		}
		b.lists[status] = list
	}

	store.Subscribe(b.endRound)
	return b, nil
}

func (b *Board) beginRound(_ []types.Project) {
	b.version.Add(1)
}

func (b *Board) listRendered(status types.ProjectStatus, listID string, count int, html string) {
	b.publish(event.ListRendered, event.ListRenderedData{
		Status:  status,
		ListID:  listID,
		Version: b.version.Load(),
		Count:   count,
		HTML:    html,
	})
}

func (b *Board) endRound(projects []types.Project) {
	b.publish(event.ProjectsUpdated, event.ProjectsUpdatedData{
		Version:  b.version.Load(),
		Projects: projects,
	})
}

func (b *Board) publish(t event.EventType, data any) {
	if b.bus == nil {
		return
	}
	b.bus.Publish(event.Event{Type: t, Data: data})
}

// Version returns the number of store changes the board has rendered.
func (b *Board) Version() uint64 {
	return b.version.Load()
}

// Submit runs a form submission.
func (b *Board) Submit(values FormValues) (types.Project, error) {
	b.gesture.Lock()
	defer b.gesture.Unlock()
	return b.input.Submit(values)
}

// Move sets a project's status directly, without a drag gesture.
// It reports whether anything changed.
func (b *Board) Move(id string, status types.ProjectStatus) bool {
	b.gesture.Lock()
	defer b.gesture.Unlock()
	return b.store.MoveProject(id, status)
}

// StartDrag picks up the card for id and returns the payload a drop would carry.
func (b *Board) StartDrag(id string) (*DataTransfer, error) {
	b.gesture.Lock()
	defer b.gesture.Unlock()

	for _, status := range types.Statuses {
		if item, ok := b.lists[status].item(id); ok {
			e := NewDragEvent(NewDataTransfer())
			item.DragStart(e)
			item.DragEnd(e)
			return e.DataTransfer, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProject, id)
}

// Drop replays a drop of dt onto the list for status: dragover, then drop if the list accepted
// the gesture, then dragleave. It reports whether the drop was accepted.
func (b *Board) Drop(status types.ProjectStatus, dt *DataTransfer) (bool, error) {
	list, ok := b.lists[status]
	if !ok {
		return false, fmt.Errorf("%w: %d", types.ErrUnknownStatus, int(status))
	}

	b.gesture.Lock()
	defer b.gesture.Unlock()

	e := NewDragEvent(dt)
	list.DragOver(e)
	if !e.DefaultPrevented() {
		list.DragLeave(e)
		logging.Debug().
			Str("list", ListID(status)).
			Str("type", dt.firstType()).
			Msg("Drop rejected")
		return false, nil
	}

	list.Drop(e)
	list.DragLeave(e)
	return true, nil
}

// List returns the list for status.
func (b *Board) List(status types.ProjectStatus) (*ProjectList, bool) {
	l, ok := b.lists[status]
	return l, ok
}

// Input returns the submission form.
func (b *Board) Input() *ProjectInput {
	return b.input
}

// HTML renders the full board page.
func (b *Board) HTML() (string, error) {
	return b.doc.HTML()
}

// ListHTML renders the list element for status.
func (b *Board) ListHTML(status types.ProjectStatus) (string, error) {
	if _, ok := b.lists[status]; !ok {
		return "", fmt.Errorf("%w: %d", types.ErrUnknownStatus, int(status))
	}
	return b.doc.ElementHTML(ElementID(status))
}

// Document returns the board document.
func (b *Board) Document() *Document {
	return b.doc
}

