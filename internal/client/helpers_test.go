package client

import (
	"sync/atomic"

	"github.com/derWhity/eventqr/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/net/context"
)

// fakeAPI is an EventsAPI whose behaviour is set per test
type fakeAPI struct {
	listFn      func(ctx context.Context, call int32) ([]models.Event, error)
	createFn    func(ctx context.Context, req models.NewEventRequest, call int32) (*models.Event, error)
	listCalls   int32
	createCalls int32
}

func (f *fakeAPI) ListEvents(ctx context.Context) ([]models.Event, error) {
	call := atomic.AddInt32(&f.listCalls, 1)
	return f.listFn(ctx, call)
}

func (f *fakeAPI) CreateEvent(ctx context.Context, req models.NewEventRequest) (*models.Event, error) {
	call := atomic.AddInt32(&f.createCalls, 1)
	return f.createFn(ctx, req, call)
}

func (f *fakeAPI) creates() int32 {
	return atomic.LoadInt32(&f.createCalls)
}

func newTestLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func eventsWithIDs(ids ...int64) []models.Event {
	events := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, models.Event{ID: id, Name: "Event", Description: "Description"})
	}
	return events
}

func idsOf(events []models.Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}
