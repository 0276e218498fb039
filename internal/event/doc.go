/*
Package event provides a type-safe pub/sub event system for the board server.

Publishers emit events and subscribers react to them without direct dependencies. The board
publishes an event every time the project store changes and every time a list view re-renders;
the HTTP server streams those events to browsers.

# Event Types

  - projects.updated: the store notified its listeners (ProjectsUpdatedData)
  - list.rendered: a project list re-rendered its items (ListRenderedData)
  - server.connected: first frame of every event stream (written by the server, not published)

# Basic Usage

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.ProjectsUpdated, func(e event.Event) {
		data := e.Data.(event.ProjectsUpdatedData)
		logging.Info().Int("count", len(data.Projects)).Msg("projects updated")
	})
	defer unsubscribe()

	bus.PublishSync(event.Event{Type: event.ProjectsUpdated, Data: data})

# Streams

Stream subscribes through watermill's gochannel and yields JSON envelopes. It is meant for
consumers that forward events over the wire (the SSE endpoint). Envelopes from one stream may
arrive out of order; versioned data lets consumers discard stale frames.

	envelopes, err := bus.Stream(ctx)
	for env := range envelopes {
		// env.Type, env.Data (json.RawMessage)
	}

# Subscriber Safety Guidelines

With PublishSync, subscribers run in the publisher's goroutine and MUST:

  - Complete quickly
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber
  - Never acquire locks that the publisher might hold

# Thread Safety

The bus is safe for concurrent use. Subscribing and publishing are protected by internal
synchronization.
*/
package event
