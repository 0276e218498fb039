package view

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Template and host ids the board document must provide.
const (
	appHostID         = "app"
	inputTemplateID   = "project-input"
	listTemplateID    = "project-list"
	projectTemplateID = "single-project"
)

// mount clones the first element of <template id=templateID>, gives the clone newElementID (when
// not empty) and inserts it into the element with hostID, at the start or at the end.
func mount(doc *goquery.Document, templateID, hostID string, insertAtStart bool, newElementID string) (*goquery.Selection, error) {
	tmpl := byID(doc.Selection, templateID)
	if tmpl.Length() == 0 || goquery.NodeName(tmpl) != "template" {
		return nil, fmt.Errorf("%w: template #%s", ErrMissingElement, templateID)
	}

	host := byID(doc.Selection, hostID)
	if host.Length() == 0 {
		return nil, fmt.Errorf("%w: host #%s", ErrMissingElement, hostID)
	}

	content := tmpl.Children().First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: template #%s has no element", ErrMissingElement, templateID)
	}

	element := content.Clone()
	if newElementID != "" {
		element.SetAttr("id", newElementID)
	}

	if insertAtStart {
		host.PrependSelection(element)
	} else {
		host.AppendSelection(element)
	}
	return element, nil
}

// hasTemplate reports whether the document provides a usable template.
func hasTemplate(doc *goquery.Document, templateID string) bool {
	tmpl := byID(doc.Selection, templateID)
	return tmpl.Length() > 0 && tmpl.Children().Length() > 0
}

// child returns the first match of selector under element, or ErrMissingElement.
func child(element *goquery.Selection, selector string) (*goquery.Selection, error) {
	sel := element.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, selector)
	}
	return sel, nil
}
