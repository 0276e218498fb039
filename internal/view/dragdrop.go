package view

import "slices"

// PayloadType is the only drag payload format the board accepts.
const PayloadType = "text/plain"

// EffectMove is the drag effect used for project cards.
const EffectMove = "move"

// droppableClass marks a list that is currently accepting a drag.
const droppableClass = "droppable"

// DataTransfer is the payload carried by a drag gesture.
// Its JSON form is what the browser script posts when a card is dropped on a list.
type DataTransfer struct {
	Types         []string          `json:"types"`
	Data          map[string]string `json:"data"`
	EffectAllowed string            `json:"effectAllowed,omitempty"`
	DropEffect    string            `json:"dropEffect,omitempty"`
}

// NewDataTransfer returns an empty payload.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{Data: make(map[string]string)}
}

// SetData stores data under format, declaring the format if it is new.
func (dt *DataTransfer) SetData(format, data string) {
	if dt.Data == nil {
		dt.Data = make(map[string]string)
	}
	if !slices.Contains(dt.Types, format) {
		dt.Types = append(dt.Types, format)
	}
	dt.Data[format] = data
}

// GetData returns the data stored under format, or "".
func (dt *DataTransfer) GetData(format string) string {
	if dt == nil {
		return ""
	}
	return dt.Data[format]
}

// firstType returns the first declared format, or "".
func (dt *DataTransfer) firstType() string {
	if dt == nil || len(dt.Types) == 0 {
		return ""
	}
	return dt.Types[0]
}

// DragEvent is a single step of a drag gesture.
type DragEvent struct {
	DataTransfer *DataTransfer

	defaultPrevented bool
}

// NewDragEvent wraps a payload in an event.
func NewDragEvent(dt *DataTransfer) *DragEvent {
	return &DragEvent{DataTransfer: dt}
}

// PreventDefault signals that the handler accepts the gesture.
// For dragover this is what allows the subsequent drop.
func (e *DragEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *DragEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Draggable is implemented by elements that can be picked up.
type Draggable interface {
	DragStart(e *DragEvent)
	DragEnd(e *DragEvent)
}

// DragTarget is implemented by elements that accept drops.
type DragTarget interface {
	DragOver(e *DragEvent)
	Drop(e *DragEvent)
	DragLeave(e *DragEvent)
}
