// Package types provides the core data types shared by the board server, its views and clients.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned when a status string names no known project status.
var ErrUnknownStatus = errors.New("unknown project status")

// ProjectStatus is the lifecycle state of a project on the board.
type ProjectStatus int

const (
	StatusActive ProjectStatus = iota
	StatusFinished
)

// Statuses lists every status in board order.
var Statuses = []ProjectStatus{StatusActive, StatusFinished}

// String returns the wire form of the status ("active" or "finished").
func (s ProjectStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseProjectStatus parses "active" or "finished" (case-insensitive).
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "finished":
		return StatusFinished, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s ProjectStatus) MarshalJSON() ([]byte, error) {
	if s != StatusActive && s != StatusFinished {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return json.Marshal(s.String())
}

func (s *ProjectStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseProjectStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Project is a single card on the board.
// Values handed out by the store are copies; mutating them has no effect on the board.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	People      int           `json:"people"`
	Status      ProjectStatus `json:"status"`
}

// FilterByStatus returns the projects with the given status, preserving order.
func FilterByStatus(projects []Project, status ProjectStatus) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}
