package view

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/projboard/projboard/pkg/types"
)

// ProjectItem is a single draggable project card.
type ProjectItem struct {
	project types.Project
	element *goquery.Selection
}

var _ Draggable = (*ProjectItem)(nil)

// newProjectItem mounts a card for p at the end of the list with hostID.
// The caller holds the document lock.
func newProjectItem(doc *goquery.Document, hostID string, p types.Project) (*ProjectItem, error) {
	element, err := mount(doc, projectTemplateID, hostID, false, p.ID)
	if err != nil {
		return nil, err
	}

	item := &ProjectItem{project: p, element: element}
	item.configure()
	if err := item.renderContent(); err != nil {
		return nil, err
	}
	return item, nil
}

// configure marks the card as a drag source.
func (i *ProjectItem) configure() {
	i.element.SetAttr("draggable", "true")
	i.element.SetAttr("data-project-id", i.project.ID)
}

func (i *ProjectItem) renderContent() error {
	title, err := child(i.element, "h2")
	if err != nil {
		return err
	}
	persons, err := child(i.element, "h3")
	if err != nil {
		return err
	}
	description, err := child(i.element, "p")
	if err != nil {
		return err
	}

	title.SetText(i.project.Title)
	persons.SetText(PersonsLabel(i.project.People))
	description.SetText(i.project.Description)
	return nil
}

// Project returns the project the card shows.
func (i *ProjectItem) Project() types.Project {
	return i.project
}

// DragStart puts the project id on the payload and allows a move.
func (i *ProjectItem) DragStart(e *DragEvent) {
	if e.DataTransfer == nil {
		e.DataTransfer = NewDataTransfer()
	}
	e.DataTransfer.SetData(PayloadType, i.project.ID)
	e.DataTransfer.EffectAllowed = EffectMove
}

// DragEnd does nothing; the list re-renders on the resulting store change.
func (i *ProjectItem) DragEnd(_ *DragEvent) {}

// PersonsLabel returns the card's headcount line.
func PersonsLabel(people int) string {
	if people == 1 {
		return "1 person assigned"
	}
	return fmt.Sprintf("%d persons assigned", people)
}
