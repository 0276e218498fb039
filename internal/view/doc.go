// Package view renders the project board into a server-side HTML document.
//
// The board document is parsed from an HTML page holding three templates (project-input,
// project-list and single-project) and an #app host. Components clone a template, attach the clone
// to a host element and keep a handle on it:
//
//   - ProjectInput: the submission form, validates and adds projects.
//   - ProjectList: one per status, re-renders its items on every store change and accepts drops.
//   - ProjectItem: a single draggable card.
//
// Board ties them together and is what the HTTP server talks to. Browsers perform the native drag
// gestures and forward the resulting DataTransfer, which Board replays against the target list.
package view
