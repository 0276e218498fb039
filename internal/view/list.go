package view

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/projboard/projboard/internal/logging"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/pkg/types"
)

// RenderFunc is called after a list has re-rendered, outside the document lock.
// html is the inner markup of the list's <ul>.
type RenderFunc func(status types.ProjectStatus, listID string, count int, html string)

// ProjectList shows every project with one status and accepts cards dropped onto it.
type ProjectList struct {
	doc    *Document
	store  *state.Store
	status types.ProjectStatus

	element *goquery.Selection
	listEl  *goquery.Selection

	// guarded by the document lock
	assigned []types.Project
	items    []*ProjectItem

	onRender RenderFunc
}

var _ DragTarget = (*ProjectList)(nil)

// NewProjectList mounts a list at the end of #app and subscribes it to the store.
// onRender may be nil.
func NewProjectList(doc *Document, store *state.Store, status types.ProjectStatus, onRender RenderFunc) (*ProjectList, error) {
	l := &ProjectList{
		doc:      doc,
		store:    store,
		status:   status,
		onRender: onRender,
	}

	err := doc.Edit(func(d *goquery.Document) error {
		if !hasTemplate(d, projectTemplateID) {
			return fmt.Errorf("%w: template #%s", ErrMissingElement, projectTemplateID)
		}

		element, err := mount(d, listTemplateID, appHostID, false, ElementID(status))
		if err != nil {
			return err
		}
		l.element = element
		return l.renderContent()
	})
	if err != nil {
		return nil, err
	}

	store.Subscribe(l.update)
	return l, nil
}

// ElementID returns the id of the list element for status.
func ElementID(status types.ProjectStatus) string {
	return status.String() + "-projects"
}

// ListID returns the id of the <ul> holding the cards for status.
func ListID(status types.ProjectStatus) string {
	return status.String() + "-projects-list"
}

func (l *ProjectList) renderContent() error {
	ul, err := child(l.element, "ul")
	if err != nil {
		return err
	}
	heading, err := child(l.element, "h2")
	if err != nil {
		return err
	}

	ul.SetAttr("id", ListID(l.status))
	heading.SetText(strings.ToUpper(l.status.String()) + " PROJECTS")
	l.listEl = ul
	return nil
}

// Status returns the status this list shows.
func (l *ProjectList) Status() types.ProjectStatus {
	return l.status
}

// update is the store listener.
func (l *ProjectList) update(projects []types.Project) {
	l.render(types.FilterByStatus(projects, l.status))
}

// render replaces every card with one per project.
func (l *ProjectList) render(assigned []types.Project) {
	var html string
	err := l.doc.Edit(func(d *goquery.Document) error {
		l.assigned = assigned
		l.listEl.Empty()
		l.items = l.items[:0]

		for _, p := range assigned {
			item, err := newProjectItem(d, ListID(l.status), p)
			if err != nil {
				return fmt.Errorf("render project %s: %w", p.ID, err)
			}
			l.items = append(l.items, item)
		}

		var err error
		html, err = l.listEl.Html()
		return err
	})
	if err != nil {
		logging.Error().Err(err).Str("list", ListID(l.status)).Msg("List render failed")
		return
	}

	logging.Debug().Str("list", ListID(l.status)).Int("count", len(assigned)).Msg("List rendered")
	if l.onRender != nil {
		l.onRender(l.status, ListID(l.status), len(assigned), html)
	}
}

// Projects returns the projects currently shown.
func (l *ProjectList) Projects() []types.Project {
	var out []types.Project
	_ = l.doc.Read(func(_ *goquery.Document) error {
		out = append([]types.Project(nil), l.assigned...)
		return nil
	})
	return out
}

// item returns the card for a project id.
func (l *ProjectList) item(id string) (*ProjectItem, bool) {
	var found *ProjectItem
	_ = l.doc.Read(func(_ *goquery.Document) error {
		for _, it := range l.items {
			if it.project.ID == id {
				found = it
				break
			}
		}
		return nil
	})
	return found, found != nil
}

// Droppable reports whether the list is showing the drop affordance.
func (l *ProjectList) Droppable() bool {
	var ok bool
	_ = l.doc.Read(func(_ *goquery.Document) error {
		ok = l.listEl.HasClass(droppableClass)
		return nil
	})
	return ok
}

// DragOver accepts the gesture when its first declared format is PayloadType.
func (l *ProjectList) DragOver(e *DragEvent) {
	if e.DataTransfer.firstType() != PayloadType {
		return
	}
	e.PreventDefault()
	l.setDroppable(true)
}

// Drop moves the dragged project into this list's status.
func (l *ProjectList) Drop(e *DragEvent) {
	id := e.DataTransfer.GetData(PayloadType)
	moved := l.store.MoveProject(id, l.status)
	logging.Info().
		Str("projectID", id).
		Str("status", l.status.String()).
		Bool("moved", moved).
		Msg("Project dropped")
	l.setDroppable(false)
}

// DragLeave removes the drop affordance.
func (l *ProjectList) DragLeave(_ *DragEvent) {
	l.setDroppable(false)
}

func (l *ProjectList) setDroppable(on bool) {
	_ = l.doc.Edit(func(_ *goquery.Document) error {
		if on {
			l.listEl.AddClass(droppableClass)
		} else {
			l.listEl.RemoveClass(droppableClass)
		}
		return nil
	})
}
