package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissingElement is returned when the board document lacks an element a component needs.
var ErrMissingElement = errors.New("missing element")

// Document is a goquery document guarded for concurrent use.
type Document struct {
	mu  sync.RWMutex
	doc *goquery.Document
}

// ParseDocument parses an HTML page into a Document.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse board document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Edit runs fn with exclusive access to the document.
// fn must not call back into the store.
func (d *Document) Edit(fn func(doc *goquery.Document) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.doc)
}

// Read runs fn with shared access to the document. fn must not modify it.
func (d *Document) Read(fn func(doc *goquery.Document) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(d.doc)
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	var out string
	err := d.Read(func(doc *goquery.Document) error {
		html, err := goquery.OuterHtml(doc.Selection)
		if err != nil {
			return err
		}
		out = html
		return nil
	})
	return out, err
}

// ElementHTML renders the element with the given id, including the element itself.
func (d *Document) ElementHTML(id string) (string, error) {
	var buf bytes.Buffer
	err := d.Read(func(doc *goquery.Document) error {
		sel := byID(doc.Selection, id)
		if sel.Length() == 0 {
			return fmt.Errorf("%w: #%s", ErrMissingElement, id)
		}
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			return err
		}
		buf.WriteString(html)
		return nil
	})
	return buf.String(), err
}

// byID finds the first descendant of sel whose id attribute equals id.
// Unlike a "#id" selector it accepts ids that are not valid CSS identifiers.
func byID(sel *goquery.Selection, id string) *goquery.Selection {
	return sel.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
}
