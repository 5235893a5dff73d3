package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Lookup reads single events and the profile list. Unlike the loader it keeps no state
type Lookup struct {
	getEvent     endpoint.Endpoint
	listProfiles endpoint.Endpoint
	getProfile   endpoint.Endpoint
	timeout      time.Duration
	logger       *logrus.Entry
}

// NewLookup creates a lookup client for the event collection at baseURL. The profile list is expected next to it,
// at ../profiles/. A timeout of 0 disables the time limit
func NewLookup(baseURL string, httpClient *http.Client, timeout time.Duration, logger *logrus.Entry) (*Lookup, error) {
	events, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "NewLookup: illegal base URL '%s'", baseURL)
	}
	if events.Scheme != "http" && events.Scheme != "https" {
		return nil, errors.Errorf("NewLookup: base URL '%s' is no HTTP URL", baseURL)
	}
	if !strings.HasSuffix(events.Path, "/") {
		events.Path += "/"
	}
	profiles := events.ResolveReference(&url.URL{Path: "../profiles/"})

	options := []httptransport.ClientOption{
		httptransport.ClientBefore(injectRequestID),
		httptransport.ClientAfter(makeResponseLogger(logger)),
	}
	if httpClient != nil {
		options = append(options, httptransport.SetClient(httpClient))
	}
	return &Lookup{
		getEvent: httptransport.NewClient(
			http.MethodGet,
			events,
			encodeIDRequest,
			makeDecoder(OpGetEvent, func() interface{} { return &models.Event{} }),
			options...,
		).Endpoint(),
		listProfiles: httptransport.NewClient(
			http.MethodGet,
			profiles,
			encodeNilRequest,
			makeDecoder(OpListProfiles, func() interface{} { return &[]models.Profile{} }),
			options...,
		).Endpoint(),
		getProfile: httptransport.NewClient(
			http.MethodGet,
			profiles,
			encodeIDRequest,
			makeDecoder(OpGetProfile, func() interface{} { return &models.Profile{} }),
			options...,
		).Endpoint(),
		timeout: timeout,
		logger:  logger.WithField(log.FldURL, events.String()),
	}, nil
}

// GetEvent fetches the event with the given ID
func (l *Lookup) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	resp, err := l.call(ctx, OpGetEvent, l.getEvent, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return resp.(*models.Event), nil
}

// ListProfiles fetches the static profile list
func (l *Lookup) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	resp, err := l.call(ctx, OpListProfiles, l.listProfiles, nil)
	if err != nil {
		return nil, err
	}
	list := *resp.(*[]models.Profile)
	if list == nil {
		list = []models.Profile{}
	}
	return list, nil
}

// GetProfile fetches a single profile
func (l *Lookup) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	resp, err := l.call(ctx, OpGetProfile, l.getProfile, id)
	if err != nil {
		return nil, err
	}
	return resp.(*models.Profile), nil
}

func (l *Lookup) call(ctx context.Context, op string, ep endpoint.Endpoint, request interface{}) (interface{}, error) {
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	resp, err := ep(ctx, request)
	if err != nil {
		err = classify(ctx, op, l.timeout, err)
		l.logger.WithError(err).Warn("Lookup failed")
		return nil, err
	}
	return resp, nil
}

// encodeIDRequest appends the ID to the target path, keeping the trailing slash
func encodeIDRequest(ctx context.Context, r *http.Request, request interface{}) error {
	id, ok := request.(string)
	if !ok || id == "" {
		return errors.New("encodeIDRequest: missing ID")
	}
	r.URL.Path = strings.TrimSuffix(r.URL.Path, "/") + "/" + id + "/"
	r.URL.RawPath = ""
	return encodeNilRequest(ctx, r, nil)
}

// makeDecoder returns a decoder expecting a 200 response with a JSON body that fits into the value returned by alloc
func makeDecoder(op string, alloc func() interface{}) httptransport.DecodeResponseFunc {
	return func(_ context.Context, r *http.Response) (interface{}, error) {
		if r.StatusCode != http.StatusOK {
			return nil, &HTTPStatusError{Op: op, StatusCode: r.StatusCode}
		}
		v := alloc()
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return nil, &ParseError{Op: op, err: err}
		}
		return v, nil
	}
}
