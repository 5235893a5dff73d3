package internal

import (
	"fmt"
	"time"

	"github.com/derWhity/eventqr/internal/models"
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/context"
)

const metricsNamespace = "eventqr"

// EventServiceMiddleware decorates an EventService
type EventServiceMiddleware func(EventService) EventService

type instrumentingEventService struct {
	next           EventService
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	eventsListed   metrics.Gauge
}

// NewInstrumentingMiddleware counts and times the calls to the event service. The collectors are registered with reg
func NewInstrumentingMiddleware(reg prometheus.Registerer) (EventServiceMiddleware, error) {
	count := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "event_service",
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method", "error"})
	latency := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: metricsNamespace,
		Subsystem: "event_service",
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, []string{"method", "error"})
	listed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "event_service",
		Name:      "events_listed",
		Help:      "Number of events returned by the last list call.",
	}, []string{})
	for _, c := range []prometheus.Collector{count, latency, listed} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "NewInstrumentingMiddleware: Failed to register collector")
		}
	}
	return func(next EventService) EventService {
		return &instrumentingEventService{
			next:           next,
			requestCount:   kitprometheus.NewCounter(count),
			requestLatency: kitprometheus.NewSummary(latency),
			eventsListed:   kitprometheus.NewGauge(listed),
		}
	}, nil
}

func (mw *instrumentingEventService) observe(method string, begin time.Time, err error) {
	lvs := []string{"method", method, "error", fmt.Sprint(err != nil)}
	mw.requestCount.With(lvs...).Add(1)
	mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
}

func (mw *instrumentingEventService) List(ctx context.Context) (list []models.Event, err error) {
	defer func(begin time.Time) {
		mw.observe("List", begin, err)
		if err == nil {
			mw.eventsListed.Set(float64(len(list)))
		}
	}(time.Now())
	return mw.next.List(ctx)
}

func (mw *instrumentingEventService) Get(ctx context.Context, id int64) (ev *models.Event, err error) {
	defer func(begin time.Time) { mw.observe("Get", begin, err) }(time.Now())
	return mw.next.Get(ctx, id)
}

func (mw *instrumentingEventService) Create(ctx context.Context, req models.NewEventRequest) (ev *models.Event, err error) {
	defer func(begin time.Time) { mw.observe("Create", begin, err) }(time.Now())
	return mw.next.Create(ctx, req)
}

func (mw *instrumentingEventService) Update(ctx context.Context, id int64, req models.NewEventRequest) (ev *models.Event, err error) {
	defer func(begin time.Time) { mw.observe("Update", begin, err) }(time.Now())
	return mw.next.Update(ctx, id, req)
}

func (mw *instrumentingEventService) Delete(ctx context.Context, id int64) (err error) {
	defer func(begin time.Time) { mw.observe("Delete", begin, err) }(time.Now())
	return mw.next.Delete(ctx, id)
}
