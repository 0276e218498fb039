// Package server provides the HTTP server for the project board.
//
// The server renders the board page, accepts project submissions and forwarded drag gestures,
// and streams board changes to browsers.
//
// # Endpoints
//
//   - GET /: the rendered board page
//   - GET /static/*: the drag-and-drop script and stylesheet
//   - GET /health: liveness and board version
//   - /project/*: JSON project API (list, get, create, move)
//   - /board/list/{status}/*: list fragments and drop replay
//   - GET /event: Server-Sent Events stream of board changes
//
// # Event Stream
//
// Each /event client gets its own subscription to the event bus stream. Frames use the format
//
//	event: message
//	data: {"type":"list.rendered","properties":{...}}
//
// The first frame is always server.connected, carrying the board version at connect time.
// Frames may arrive out of order; projects.updated and list.rendered carry a version and
// clients ignore frames older than what they have already applied.
//
// # Errors
//
// API errors use a consistent envelope:
//
//	{"error": {"code": "INVALID_INPUT", "message": "Invalid input, please try again"}}
package server
