package meetsync

import (
	"github.com/anumularoots-svg/pro-sub003/utils"
)

// Handler is an interface that defines the methods for handling events.
type Handler interface {
	Check(*Event) bool
	Invoke(*Event, *Context)
}

// Callback is a function type that represents a callback function for handling events.
type Callback func(*Event, *Context)

// TypeHandler is a struct that implements the Handler interface for handling events of a specific type.
type TypeHandler struct {
	Callback Callback
	Filter   Filter
	Type     EventType
}

// Check checks if the event is of the specified type.
func (th *TypeHandler) Check(event *Event) bool {
	if th.Type&event.Type == 0 {
		return false
	}
	ok := true
	if th.Filter != nil {
		ok = th.Filter.Check(event)
	}
	return ok
}

// Invoke executes the callback function for the event of the specified type.
func (th *TypeHandler) Invoke(event *Event, context *Context) {
	th.Callback(event, context)
}

// NewTypeHandler returns a new `TypeHandler`.
//
// eventType may combine several types, e.g. `OnParticipantJoined | OnParticipantLeft`.
func NewTypeHandler(callback Callback, filter Filter, eventType EventType) Handler {
	return &TypeHandler{
		Callback: callback,
		Filter:   filter,
		Type:     eventType,
	}
}

// ControlHandler is a struct that implements the Handler interface for handling applied
// control messages of specific types.
type ControlHandler struct {
	Callback Callback
	Filter   Filter
	Types    []ControlMessageType
}

// Check checks if the event carries a control message of one of the types.
func (ch *ControlHandler) Check(event *Event) bool {
	if event.Type != OnControlMessage || event.Control == nil {
		return false
	}
	if len(ch.Types) > 0 && !utils.Contains(ch.Types, event.Control.Type) {
		return false
	}
	ok := true
	if ch.Filter != nil {
		ok = ch.Filter.Check(event)
	}
	return ok
}

// Invoke executes the callback function for the control message event.
func (ch *ControlHandler) Invoke(event *Event, context *Context) {
	ch.Callback(event, context)
}

// NewControlHandler returns a new `ControlHandler`. Without types every control message matches.
func NewControlHandler(callback Callback, filter Filter, types ...ControlMessageType) Handler {
	return &ControlHandler{
		Callback: callback,
		Filter:   filter,
		Types:    types,
	}
}
