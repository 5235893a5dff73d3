package client

import (
	"strings"
	"sync"
	"time"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	// DefaultResetDelay is the time a successful submission stays visible before the form clears itself
	DefaultResetDelay = 2 * time.Second
	// DefaultSubmitTimeout limits a submission the same way DefaultLoadTimeout limits a load
	DefaultSubmitTimeout = 10 * time.Second
)

// SubmitterOption configures an EventSubmitter
type SubmitterOption func(*EventSubmitter)

// WithResetDelay overrides DefaultResetDelay
func WithResetDelay(d time.Duration) SubmitterOption {
	return func(s *EventSubmitter) {
		s.resetDelay = d
	}
}

// WithSubmitTimeout overrides DefaultSubmitTimeout. Zero disables the timeout
func WithSubmitTimeout(d time.Duration) SubmitterOption {
	return func(s *EventSubmitter) {
		s.timeout = d
	}
}

// WithNow replaces the clock used to determine "today" when the form is reset
func WithNow(now func() time.Time) SubmitterOption {
	return func(s *EventSubmitter) {
		s.now = now
	}
}

// WithSubmitObserver registers a function receiving every state the form passes through, in order. The function
// must not submit itself
func WithSubmitObserver(fn func(SubmitState)) SubmitterOption {
	return func(s *EventSubmitter) {
		s.observer = fn
	}
}

// EventSubmitter validates and sends new events and keeps the state of the event form
type EventSubmitter struct {
	api        EventsAPI
	timeout    time.Duration
	resetDelay time.Duration
	now        func() time.Time
	observer   func(SubmitState)
	logger     *logrus.Entry

	notifyMu sync.Mutex
	mu       sync.Mutex
	state    SubmitState
	// gen identifies the latest submission. Responses and resets of older ones are ignored
	gen        uint64
	resetTimer *time.Timer
}

// NewEventSubmitter creates a submitter with an empty form dated today
func NewEventSubmitter(api EventsAPI, logger *logrus.Entry, opts ...SubmitterOption) *EventSubmitter {
	s := &EventSubmitter{
		api:        api,
		timeout:    DefaultSubmitTimeout,
		resetDelay: DefaultResetDelay,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = SubmitState{Phase: SubmitIdle, Form: Form{Date: s.now()}}
	return s
}

// State returns the current state
func (s *EventSubmitter) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// SetName updates the name field
func (s *EventSubmitter) SetName(name string) SubmitState {
	return s.apply(func(st SubmitState) (SubmitState, bool) {
		st.Form.Name = name
		return st, true
	})
}

// SetDescription updates the description field
func (s *EventSubmitter) SetDescription(description string) SubmitState {
	return s.apply(func(st SubmitState) (SubmitState, bool) {
		st.Form.Description = description
		return st, true
	})
}

// SetDate updates the date field. Only the calendar day is sent, taken in the value's own time zone rather than
// in UTC
func (s *EventSubmitter) SetDate(date time.Time) SubmitState {
	return s.apply(func(st SubmitState) (SubmitState, bool) {
		st.Form.Date = date
		return st, true
	})
}

// CanSubmit tells whether the submit control should be enabled
func (s *EventSubmitter) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase != SubmitSubmitting && validateForm(s.state.Form) == nil
}

// Submit fills the form with the given values and submits it
func (s *EventSubmitter) Submit(ctx context.Context, name, description string, date time.Time) (SubmitState, error) {
	return s.submit(ctx, &Form{Name: name, Description: description, Date: date})
}

// SubmitForm submits the values currently held by the form.
//
// The returned error is a *ValidationError if a required field is empty, ErrSubmitInFlight if another submission has
// not finished yet, or the classified request error. The state reflects the outcome in every case but the
// ErrSubmitInFlight one, where it is left untouched.
func (s *EventSubmitter) SubmitForm(ctx context.Context) (SubmitState, error) {
	return s.submit(ctx, nil)
}

// Close stops a pending reset of the form
func (s *EventSubmitter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopResetLocked()
}

func (s *EventSubmitter) submit(ctx context.Context, input *Form) (SubmitState, error) {
	var (
		gen      uint64
		form     Form
		inFlight bool
		verr     *ValidationError
	)
	st := s.apply(func(st SubmitState) (SubmitState, bool) {
		if st.Phase == SubmitSubmitting {
			inFlight = true
			return st, false
		}
		if input != nil {
			st.Form = *input
		}
		// Whatever is pending from an earlier success must not clear this submission's form
		s.stopResetLocked()
		s.gen++
		gen = s.gen
		form = st.Form
		if verr = validateForm(form); verr != nil {
			return st.fail(verr), true
		}
		return st.begin(), true
	})
	if inFlight {
		return st, ErrSubmitInFlight
	}
	if verr != nil {
		s.logger.WithField(log.FldField, verr.Field).Info("Event form incomplete")
		return st, verr
	}

	created, err := s.request(ctx, form)

	var discarded bool
	st = s.apply(func(st SubmitState) (SubmitState, bool) {
		if gen != s.gen {
			discarded = true
			return st, false
		}
		if err != nil {
			return st.fail(err), true
		}
		s.resetTimer = time.AfterFunc(s.resetDelay, func() {
			s.resetForm(gen)
		})
		return st.succeed(created), true
	})
	if discarded {
		s.logger.WithField(log.FldGeneration, gen).Debug("Discarding result of a superseded submission")
	}
	return st, err
}

func (s *EventSubmitter) request(ctx context.Context, form Form) (*models.Event, error) {
	var cancel context.CancelFunc
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	req := models.NewEventRequest{
		Name:        form.Name,
		Description: form.Description,
		Date:        models.DateOf(form.Date),
	}
	start := time.Now()
	created, err := s.api.CreateEvent(ctx, req)
	if err != nil {
		err = classify(ctx, OpCreateEvent, s.timeout, err)
		entry := s.logger.WithError(err).WithField(log.FldDuration, time.Since(start))
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			entry = entry.WithField(log.FldStatus, statusErr.StatusCode)
		}
		entry.Error("Failed to add event")
		return nil, err
	}
	entry := s.logger.WithField(log.FldDuration, time.Since(start))
	if created != nil {
		entry = entry.WithField(log.FldID, created.ID)
	}
	entry.Info("Event added")
	return created, nil
}

// resetForm clears the form if the submission identified by gen is still the latest one and still shown as succeeded
func (s *EventSubmitter) resetForm(gen uint64) {
	s.apply(func(st SubmitState) (SubmitState, bool) {
		if gen != s.gen || st.Phase != SubmitSucceeded {
			return st, false
		}
		s.resetTimer = nil
		return st.reset(s.now()), true
	})
}

func (s *EventSubmitter) stopResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

// apply runs a transition under the lock and hands the resulting state to the observer
func (s *EventSubmitter) apply(fn func(SubmitState) (SubmitState, bool)) SubmitState {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, changed := fn(s.state)
	s.state = next
	s.mu.Unlock()

	next = next.snapshot()
	if changed && s.observer != nil {
		s.observer(next.snapshot())
	}
	return next
}

func validateForm(f Form) *ValidationError {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: MsgNameMissing}
	}
	if strings.TrimSpace(f.Description) == "" {
		return &ValidationError{Field: "description", Message: MsgDescriptionMissing}
	}
	return nil
}
