package event

import "github.com/projboard/projboard/pkg/types"

// ProjectsUpdatedData is the data for projects.updated events.
// Version increases by one per store notification, so consumers can drop stale snapshots.
type ProjectsUpdatedData struct {
	Version  uint64          `json:"version"`
	Projects []types.Project `json:"projects"`
}

// ListRenderedData is the data for list.rendered events.
// HTML is the inner markup of the list's <ul>.
type ListRenderedData struct {
	Status  types.ProjectStatus `json:"status"`
	ListID  string              `json:"listID"`
	Version uint64              `json:"version"`
	Count   int                 `json:"count"`
	HTML    string              `json:"html"`
}
