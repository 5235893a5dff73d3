package internal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/derWhity/eventqr/internal/calendar"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"
)

// EventEndpoints is a collection of endpoints for working with the event service
type EventEndpoints struct {
	List     endpoint.Endpoint
	Get      endpoint.Endpoint
	Create   endpoint.Endpoint
	Update   endpoint.Endpoint
	Delete   endpoint.Endpoint
	Calendar endpoint.Endpoint
}

// ProfileEndpoints is a collection of endpoints for reading profiles
type ProfileEndpoints struct {
	List endpoint.Endpoint
	Get  endpoint.Endpoint
}

// The base for the responses of the health check which always contains an "ok" property to show if the call was
// successful and a data element containing the result of the request
type basicResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data,omitempty"`
}

// An update of an existing event - the ID comes from the path, the rest from the body
type updateEventRequest struct {
	ID    int64
	Event models.NewEventRequest
}

// createdResponse is answered with status 201
type createdResponse struct {
	*models.Event
}

func (createdResponse) StatusCode() int {
	return http.StatusCreated
}

// noContentResponse is answered with status 204 and no body
type noContentResponse struct{}

func (noContentResponse) StatusCode() int {
	return http.StatusNoContent
}

// calendarResponse is the serialized iCalendar feed
type calendarResponse string

// -- Events -----------------------------------------------------------------------------------------------------------

// MakeEventEndpoints builds the endpoints needed to communicate with the Event Service. The calendar endpoint renders
// the events into feed, stamped with the time returned by now
func MakeEventEndpoints(s EventService, feed calendar.Feed, now func() time.Time) EventEndpoints {
	return EventEndpoints{
		List:     RecoverPanics(makeListEventsEndpoint(s)),
		Get:      RecoverPanics(makeGetEventEndpoint(s)),
		Create:   RecoverPanics(makeCreateEventEndpoint(s)),
		Update:   RecoverPanics(makeUpdateEventEndpoint(s)),
		Delete:   RecoverPanics(makeDeleteEventEndpoint(s)),
		Calendar: RecoverPanics(makeCalendarEndpoint(s, feed, now)),
	}
}

func makeListEventsEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []models.Event{}
		}
		return list, nil
	}
}

func makeGetEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(int64)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		return s.Get(ctx, id)
	}
}

func makeCreateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(models.NewEventRequest)
		if !ok {
			return nil, fmt.Errorf("illegal event parameter")
		}
		ev, err := s.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return createdResponse{ev}, nil
	}
}

func makeUpdateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(updateEventRequest)
		if !ok {
			return nil, fmt.Errorf("illegal event parameter")
		}
		return s.Update(ctx, req.ID, req.Event)
	}
}

func makeDeleteEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(int64)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return noContentResponse{}, nil
	}
}

func makeCalendarEndpoint(s EventService, feed calendar.Feed, now func() time.Time) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return calendarResponse(feed.Render(list, now())), nil
	}
}

// -- Profiles ---------------------------------------------------------------------------------------------------------

// MakeProfileEndpoints builds the endpoints of the read-only Profile Service
func MakeProfileEndpoints(s ProfileService) ProfileEndpoints {
	return ProfileEndpoints{
		List: RecoverPanics(func(ctx context.Context, request interface{}) (interface{}, error) {
			list, err := s.List(ctx)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []models.Profile{}
			}
			return list, nil
		}),
		Get: RecoverPanics(func(ctx context.Context, request interface{}) (interface{}, error) {
			id, ok := request.(string)
			if !ok {
				return nil, fmt.Errorf("illegal profile ID")
			}
			return s.Get(ctx, id)
		}),
	}
}

// -- Health -----------------------------------------------------------------------------------------------------------

// MakeHealthEndpoint returns an endpoint calling the Check method of the HealthService
func MakeHealthEndpoint(s HealthService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		st, err := s.Check(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, st}, nil
	}
}
