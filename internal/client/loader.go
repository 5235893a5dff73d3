package client

import (
	"sort"
	"sync"
	"time"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// DefaultLoadTimeout is the time a fetch of the event list may take before it is aborted
const DefaultLoadTimeout = 10 * time.Second

// LoaderOption configures an EventListLoader
type LoaderOption func(*EventListLoader)

// WithLoadTimeout overrides DefaultLoadTimeout. Zero disables the timeout
func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *EventListLoader) {
		l.timeout = d
	}
}

// WithLoadObserver registers a function that receives every state the loader passes through, in order. The
// function must not start a load or refresh itself
func WithLoadObserver(fn func(LoadState)) LoaderOption {
	return func(l *EventListLoader) {
		l.observer = fn
	}
}

// EventListLoader fetches the event collection and keeps the state of the event list
type EventListLoader struct {
	api      EventsAPI
	timeout  time.Duration
	observer func(LoadState)
	logger   *logrus.Entry

	// notifyMu serializes transitions together with their notification
	notifyMu sync.Mutex
	mu       sync.Mutex
	state    LoadState
	// gen counts the fetches started - only the result of the latest one is applied
	gen uint64
}

// NewEventListLoader creates a loader in the loading state. Nothing is fetched before Load is called
func NewEventListLoader(api EventsAPI, logger *logrus.Entry, opts ...LoaderOption) *EventListLoader {
	l := &EventListLoader{
		api:     api,
		timeout: DefaultLoadTimeout,
		logger:  logger,
		state:   LoadState{Phase: LoadLoading},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the event list from scratch. It is used for the initial load and for retrying after an error
func (l *EventListLoader) Load(ctx context.Context) LoadState {
	return l.fetch(ctx, false)
}

// Refresh fetches the event list while the current state stays visible
func (l *EventListLoader) Refresh(ctx context.Context) LoadState {
	return l.fetch(ctx, true)
}

// State returns the current state
func (l *EventListLoader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.snapshot()
}

// IsLoading is true while there is nothing to show because the list is being fetched from scratch
func (l *EventListLoader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Phase == LoadLoading
}

// IsRefreshing is true while a refresh runs on top of the shown list
func (l *EventListLoader) IsRefreshing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Refreshing
}

func (l *EventListLoader) fetch(ctx context.Context, refresh bool) LoadState {
	var gen uint64
	l.apply(func(s LoadState) (LoadState, bool) {
		l.gen++
		gen = l.gen
		return s.begin(refresh), true
	})

	events, err := l.request(ctx)

	return l.apply(func(s LoadState) (LoadState, bool) {
		if gen != l.gen {
			l.logger.WithField(log.FldGeneration, gen).Debug("Discarding result of a superseded fetch")
			return s, false
		}
		if err != nil {
			return s.fail(err), true
		}
		return s.succeed(events), true
	})
}

// apply runs a transition under the lock and hands the resulting state to the observer
func (l *EventListLoader) apply(fn func(LoadState) (LoadState, bool)) LoadState {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	next, changed := fn(l.state)
	l.state = next
	snap := next.snapshot()
	l.mu.Unlock()

	if changed && l.observer != nil {
		l.observer(snap)
	}
	return snap
}

func (l *EventListLoader) request(ctx context.Context) ([]models.Event, error) {
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	events, err := l.api.ListEvents(ctx)
	if err != nil {
		err = classify(ctx, OpListEvents, l.timeout, err)
		entry := l.logger.WithError(err).WithField(log.FldDuration, time.Since(start))
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			entry = entry.WithField(log.FldStatus, statusErr.StatusCode)
		}
		entry.Error("Failed to load events")
		return nil, err
	}

	sorted := sortByID(events)
	l.logger.WithFields(logrus.Fields{
		log.FldCount:    len(sorted),
		log.FldDuration: time.Since(start),
	}).Info("Events loaded")
	return sorted, nil
}

// sortByID returns a copy of the events in ascending ID order. Events sharing an ID keep their server order
func sortByID(events []models.Event) []models.Event {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
