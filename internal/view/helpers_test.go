package view

import (
	"fmt"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/state"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

func newTestBoard(t *testing.T, bus *event.Bus) (*Board, *state.Store) {
	t.Helper()
	store := state.New(state.WithIDGenerator(sequentialIDs()))
	board, err := NewBoard(store, bus)
	require.NoError(t, err)
	return board, store
}

// query runs a selector against the board document and returns text of each match.
func query(t *testing.T, b *Board, selector string) []string {
	t.Helper()
	var out []string
	err := b.Document().Read(func(d *goquery.Document) error {
		d.Find(selector).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s.Text())
		})
		return nil
	})
	require.NoError(t, err)
	return out
}

func attr(t *testing.T, b *Board, selector, name string) string {
	t.Helper()
	var v string
	err := b.Document().Read(func(d *goquery.Document) error {
		v, _ = d.Find(selector).First().Attr(name)
		return nil
	})
	require.NoError(t, err)
	return v
}

var validForm = FormValues{Title: "Build API", Description: "Design and implement", People: "3"}

func newStore() *state.Store {
	return state.New(state.WithIDGenerator(sequentialIDs()))
}
