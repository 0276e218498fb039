package view

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/projboard/projboard/internal/logging"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/internal/validation"
	"github.com/projboard/projboard/pkg/types"
)

// InvalidInputMessage is the alert shown to the user when a submission is rejected.
const InvalidInputMessage = "Invalid input, please try again"

// ErrInvalidInput is returned by Submit when any field fails validation.
var ErrInvalidInput = errors.New("invalid input, please try again")

const inputElementID = "user-input"

// FormValues are the raw field values of a submission, as typed by the user.
type FormValues struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	People      string `json:"people"`
}

// ProjectInput is the project submission form.
type ProjectInput struct {
	doc   *Document
	store *state.Store

	element     *goquery.Selection
	title       *goquery.Selection
	description *goquery.Selection
	people      *goquery.Selection
}

// NewProjectInput mounts the form at the start of #app.
func NewProjectInput(doc *Document, store *state.Store) (*ProjectInput, error) {
	in := &ProjectInput{doc: doc, store: store}

	err := doc.Edit(func(d *goquery.Document) error {
		element, err := mount(d, inputTemplateID, appHostID, true, inputElementID)
		if err != nil {
			return err
		}
		in.element = element

		if in.title, err = child(element, "#title"); err != nil {
			return err
		}
		if in.description, err = child(element, "#description"); err != nil {
			return err
		}
		if in.people, err = child(element, "#people"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Submit validates the values and adds a new active project.
// On ErrInvalidInput the store is left untouched. On success the form fields are cleared.
func (in *ProjectInput) Submit(values FormValues) (types.Project, error) {
	title, description, people, ok := gatherUserInput(values)
	if !ok {
		logging.Debug().
			Str("title", values.Title).
			Str("people", values.People).
			Msg("Project submission rejected")
		return types.Project{}, ErrInvalidInput
	}

	p := in.store.AddProject(title, description, people)
	logging.Info().
		Str("projectID", p.ID).
		Str("title", p.Title).
		Int("people", p.People).
		Msg("Project added")

	in.clearInputs()
	return p, nil
}

// gatherUserInput validates the raw values.
// People is read the way a number input is: blank or non-numeric text fails, and so does a
// fractional headcount.
func gatherUserInput(values FormValues) (string, string, int, bool) {
	people, ok := parsePeople(values.People)

	titleValidatable := validation.Validatable{
		Value:    values.Title,
		Required: true,
	}
	descriptionValidatable := validation.Validatable{
		Value:     values.Description,
		Required:  true,
		MinLength: validation.Int(5),
	}
	peopleValidatable := validation.Validatable{
		Value:    people,
		Required: true,
		Min:      validation.Float(1),
		Max:      validation.Float(5),
	}

	if !ok ||
		!validation.Validate(titleValidatable) ||
		!validation.Validate(descriptionValidatable) ||
		!validation.Validate(peopleValidatable) {
		return "", "", 0, false
	}
	return values.Title, values.Description, int(people), true
}

func parsePeople(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, false
	}
	return n, true
}

func (in *ProjectInput) clearInputs() {
	_ = in.doc.Edit(func(_ *goquery.Document) error {
		in.title.SetAttr("value", "")
		in.description.SetText("")
		in.people.SetAttr("value", "")
		return nil
	})
}
