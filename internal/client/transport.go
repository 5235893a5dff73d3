package client

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// RequestIDHeader carries the ID correlating client and server log entries
const RequestIDHeader = ctxhelper.RequestIDHeader

// EventsAPI is the remote event collection the loader and the submitter talk to
type EventsAPI interface {
	// ListEvents fetches the full event collection in server order
	ListEvents(ctx context.Context) ([]models.Event, error)
	// CreateEvent sends a new event to the server. The returned event may be nil if the server's answer did not
	// contain one
	CreateEvent(ctx context.Context, req models.NewEventRequest) (*models.Event, error)
}

// HTTPClient talks to the event API over HTTP
type HTTPClient struct {
	list   endpoint.Endpoint
	create endpoint.Endpoint
	logger *logrus.Entry
}

// NewHTTPClient creates a client for the event collection at baseURL. If httpClient is nil, http.DefaultClient is
// used
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *logrus.Entry) (*HTTPClient, error) {
	tgt, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "NewHTTPClient: illegal base URL '%s'", baseURL)
	}
	if tgt.Scheme != "http" && tgt.Scheme != "https" {
		return nil, errors.Errorf("NewHTTPClient: base URL '%s' is no HTTP URL", baseURL)
	}
	options := []httptransport.ClientOption{
		httptransport.ClientBefore(injectRequestID),
		httptransport.ClientAfter(makeResponseLogger(logger)),
	}
	if httpClient != nil {
		options = append(options, httptransport.SetClient(httpClient))
	}
	logger = logger.WithField(log.FldURL, tgt.String())
	return &HTTPClient{
		list: httptransport.NewClient(
			http.MethodGet,
			tgt,
			encodeNilRequest,
			decodeEventListResponse,
			options...,
		).Endpoint(),
		create: httptransport.NewClient(
			http.MethodPost,
			tgt,
			encodeJSONRequest,
			decodeCreatedEventResponse,
			options...,
		).Endpoint(),
		logger: logger,
	}, nil
}

// ListEvents fetches the full event collection
func (c *HTTPClient) ListEvents(ctx context.Context) ([]models.Event, error) {
	c.logger.WithField(log.FldMethod, http.MethodGet).Debug("Fetching events")
	resp, err := c.list(ctx, nil)
	if err != nil {
		return nil, err
	}
	return resp.([]models.Event), nil
}

// CreateEvent posts a new event to the server
func (c *HTTPClient) CreateEvent(ctx context.Context, req models.NewEventRequest) (*models.Event, error) {
	c.logger.WithField(log.FldMethod, http.MethodPost).Debug("Sending new event")
	resp, err := c.create(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*models.Event), nil
}

// encodeNilRequest sends no body at all
func encodeNilRequest(_ context.Context, r *http.Request, _ interface{}) error {
	r.Header.Set("Accept", "application/json")
	return nil
}

// encodeJSONRequest writes the request as JSON body
func encodeJSONRequest(_ context.Context, r *http.Request, request interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return errors.Wrap(err, "encodeJSONRequest: Failed to serialize request")
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	r.ContentLength = int64(buf.Len())
	r.Body = ioutil.NopCloser(&buf)
	return nil
}

// decodeEventListResponse expects a 200 response carrying a JSON array of events
func decodeEventListResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Op: OpListEvents, StatusCode: r.StatusCode}
	}
	var events []models.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		return nil, &ParseError{Op: OpListEvents, err: err}
	}
	if events == nil {
		// "null" is no list, but there is nothing in it either
		events = []models.Event{}
	}
	return events, nil
}

// decodeCreatedEventResponse accepts every 2xx response with a JSON body
func decodeCreatedEventResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return nil, &HTTPStatusError{Op: OpCreateEvent, StatusCode: r.StatusCode}
	}
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, &ParseError{Op: OpCreateEvent, err: err}
	}
	var ev models.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return (*models.Event)(nil), nil
	}
	return &ev, nil
}

// injectRequestID tags every outgoing request with an ID - either the one from the context or a new one
func injectRequestID(ctx context.Context, r *http.Request) context.Context {
	id := ctxhelper.RequestID(ctx)
	if id == "" {
		id = uuid.New().String()
		ctx = context.WithValue(ctx, ctxhelper.KeyRequestID, id)
	}
	r.Header.Set(RequestIDHeader, id)
	return ctx
}

func makeResponseLogger(logger *logrus.Entry) httptransport.ClientResponseFunc {
	return func(ctx context.Context, r *http.Response) context.Context {
		logger.WithFields(logrus.Fields{
			log.FldMethod:    r.Request.Method,
			log.FldStatus:    r.StatusCode,
			log.FldRequestID: r.Request.Header.Get(RequestIDHeader),
		}).Debug("Response received")
		return ctx
	}
}
