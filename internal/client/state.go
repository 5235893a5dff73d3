package client

import (
	"time"

	"github.com/derWhity/eventqr/internal/models"
)

// User-facing messages
const (
	MsgLoadFailed         = "Failed to load events. Please try again later."
	MsgLoadTimedOut       = "Loading events timed out. Please try again later."
	MsgLoadUnreachable    = "Could not reach the event server. Please check your connection and try again."
	MsgLoadInvalid        = "The event server sent an unexpected answer. Please try again later."
	MsgSubmitFailed       = "Failed to add event. Please try again."
	MsgSubmitSucceeded    = "Event added successfully!"
	MsgNameMissing        = "Please enter an event name"
	MsgDescriptionMissing = "Please enter an event description"
)

// LoadPhase is the phase an event list is in
type LoadPhase int

const (
	// LoadLoading means the list is being fetched and there is nothing to show yet
	LoadLoading LoadPhase = iota
	// LoadReady means the list has been fetched successfully
	LoadReady
	// LoadError means the last fetch has failed
	LoadError
)

func (p LoadPhase) String() string {
	switch p {
	case LoadLoading:
		return "loading"
	case LoadReady:
		return "ready"
	case LoadError:
		return "error"
	}
	return "unknown"
}

// LoadState is a snapshot of an event list
type LoadState struct {
	Phase LoadPhase
	// Events holds the events sorted by ascending ID. Only set in LoadReady
	Events []models.Event
	// Message is the user-facing error message. Only set in LoadError
	Message string
	// Err is the cause of the failure. Only set in LoadError
	Err error
	// Refreshing is true while a refresh is running on top of the state shown
	Refreshing bool
}

// begin starts a fetch. An initial load or a retry drops everything shown so far, a refresh keeps it visible
func (s LoadState) begin(refresh bool) LoadState {
	if refresh {
		s.Refreshing = true
		return s
	}
	return LoadState{Phase: LoadLoading}
}

// succeed finishes a fetch with the given (already sorted) events
func (s LoadState) succeed(events []models.Event) LoadState {
	return LoadState{Phase: LoadReady, Events: events}
}

// fail finishes a fetch with an error. Events of an earlier success are not carried over
func (s LoadState) fail(err error) LoadState {
	return LoadState{Phase: LoadError, Message: loadFailureMessage(err), Err: err}
}

// snapshot returns a copy that does not share the event slice
func (s LoadState) snapshot() LoadState {
	if s.Events != nil {
		events := make([]models.Event, len(s.Events))
		copy(events, s.Events)
		s.Events = events
	}
	return s
}

func loadFailureMessage(err error) string {
	switch {
	case IsTimeout(err):
		return MsgLoadTimedOut
	case IsHTTPStatus(err):
		return MsgLoadFailed
	case IsNetwork(err):
		return MsgLoadUnreachable
	case IsParse(err):
		return MsgLoadInvalid
	}
	return MsgLoadFailed
}

// SubmitPhase is the phase of an event form
type SubmitPhase int

const (
	// SubmitIdle means the form is waiting for input
	SubmitIdle SubmitPhase = iota
	// SubmitSubmitting means a request is in flight
	SubmitSubmitting
	// SubmitSucceeded means the event has been created. The form resets itself shortly after
	SubmitSucceeded
	// SubmitFailed means the last submission has failed (validation or request)
	SubmitFailed
)

func (p SubmitPhase) String() string {
	switch p {
	case SubmitIdle:
		return "idle"
	case SubmitSubmitting:
		return "submitting"
	case SubmitSucceeded:
		return "succeeded"
	case SubmitFailed:
		return "failed"
	}
	return "unknown"
}

// Form holds the input fields of the event form
type Form struct {
	Name        string
	Description string
	Date        time.Time
}

// SubmitState is a snapshot of an event form
type SubmitState struct {
	Phase SubmitPhase
	Form  Form
	// Message is the user-facing outcome of the last submission
	Message string
	// Err is the cause of a failure. Only set in SubmitFailed
	Err error
	// Created is the event returned by the server. Only set in SubmitSucceeded and may be nil
	Created *models.Event
}

func (s SubmitState) begin() SubmitState {
	return SubmitState{Phase: SubmitSubmitting, Form: s.Form}
}

func (s SubmitState) succeed(created *models.Event) SubmitState {
	return SubmitState{Phase: SubmitSucceeded, Form: s.Form, Message: MsgSubmitSucceeded, Created: created}
}

// fail keeps the form so the user can correct and resubmit
func (s SubmitState) fail(err error) SubmitState {
	msg := MsgSubmitFailed
	if verr, ok := err.(*ValidationError); ok {
		msg = verr.Message
	}
	return SubmitState{Phase: SubmitFailed, Form: s.Form, Message: msg, Err: err}
}

// snapshot copies the created event so callers cannot change the submitter's state through it
func (s SubmitState) snapshot() SubmitState {
	if s.Created != nil {
		created := *s.Created
		s.Created = &created
	}
	return s
}

// reset clears the form and sets the date to today
func (s SubmitState) reset(now time.Time) SubmitState {
	return SubmitState{Phase: SubmitIdle, Form: Form{Date: now}}
}
