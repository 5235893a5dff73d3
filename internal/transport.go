package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/derWhity/eventqr/internal/calendar"
	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/qrcode"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	apiBasePath = "/api"
)

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

type errorResponse struct {
	basicResponse
	// The error code
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

type ctxKey int

const keyRequestStart ctxKey = iota

// MakeHTTPHandler creates the main HTTP handler for the event server. QR code images are served from qrDir, metrics
// are exposed by the given handler
func MakeHTTPHandler(
	es EventService,
	ps ProfileService,
	hs HealthService,
	feed calendar.Feed,
	qrDir string,
	metrics http.Handler,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerErrorHandler(transport.ErrorHandlerFunc(logError)),
		httptransport.ServerBefore(makeContextInjector(logger)),
		httptransport.ServerAfter(setRequestIDHeader),
		httptransport.ServerFinalizer(logRequest),
	}

	// -- Event Service --------------------------------
	{
		evEp := MakeEventEndpoints(es, feed, time.Now)

		// Calendar - registered before the ID routes
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/calendar.ics").Handler(httptransport.NewServer(
			evEp.Calendar,
			decodeNilRequest,
			encodeCalendarResponse,
			options...,
		))

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/events{slash:/?}").Handler(httptransport.NewServer(
			evEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/events{slash:/?}").Handler(httptransport.NewServer(
			evEp.Create,
			decodeEvent,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id:[0-9]+}{slash:/?}").Handler(httptransport.NewServer(
			evEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Update
		r.Methods(http.MethodPut).Path(apiBasePath + "/events/{id:[0-9]+}{slash:/?}").Handler(httptransport.NewServer(
			evEp.Update,
			decodeEventUpdate,
			encodeJSONResponse,
			options...,
		))

		// Delete
		r.Methods(http.MethodDelete).Path(apiBasePath + "/events/{id:[0-9]+}{slash:/?}").Handler(httptransport.NewServer(
			evEp.Delete,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Profile Service ------------------------------
	{
		pEp := MakeProfileEndpoints(ps)

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/profiles{slash:/?}").Handler(httptransport.NewServer(
			pEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/profiles/{id:[^/]+}{slash:/?}").Handler(httptransport.NewServer(
			pEp.Get,
			decodeProfileIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// Health check for the service manager's watchdog
	r.Methods(http.MethodGet).Path("/health").Handler(httptransport.NewServer(
		MakeHealthEndpoint(hs),
		decodeNilRequest,
		encodeJSONResponse,
		options...,
	))

	if metrics != nil {
		r.Methods(http.MethodGet).Path("/metrics").Handler(metrics)
	}

	// Plain file service for the QR code images
	r.Methods(http.MethodGet).PathPrefix(qrcode.URLPath).Handler(
		http.StripPrefix(qrcode.URLPath, noDirListing(http.FileServer(http.Dir(qrDir)))),
	)

	return r
}

// noDirListing answers 404 for directory requests instead of listing the directory's contents
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// decodeEvent tries to load a new event from the provided HTTP request's body
func decodeEvent(_ context.Context, r *http.Request) (interface{}, error) {
	var req models.NewEventRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// Decodes an event from an update request where the ID of the event is in the path
func decodeEventUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := getIDFromPath("id", r)
	if err != nil {
		return nil, err
	}
	ev, err := decodeEvent(ctx, r)
	if err != nil {
		return nil, err
	}
	return updateEventRequest{ID: id, Event: ev.(models.NewEventRequest)}, nil
}

// getIDFromPath is a helper function that gets a numeric ID from the given path variable
func getIDFromPath(varname string, r *http.Request) (int64, error) {
	errmsg := fmt.Sprintf("Value for '%s' is no valid ID", varname)
	vars := mux.Vars(r)
	str, ok := vars[varname]
	if !ok {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidID, errmsg)
	}
	id, err := strconv.ParseInt(str, 10, 64)
	if err != nil || id < 1 {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidID, errmsg)
	}
	return id, nil
}

// Decodes an ID from the "id" path variable provided by GoRilla
func decodeIDFromPath(ctx context.Context, r *http.Request) (interface{}, error) {
	return getIDFromPath("id", r)
}

// Decodes the ID of a profile from the path variable "id"
func decodeProfileIDFromPath(ctx context.Context, r *http.Request) (interface{}, error) {
	str, ok := mux.Vars(r)["id"]
	if !ok || str == "" {
		return nil, MakeError(http.StatusBadRequest, ErrCodeInvalidID, "No ID provided")
	}
	return str, nil
}

// Encodes a typical JSON response. Responses carrying a status code of their own get that one
func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	status := http.StatusOK
	if sc, ok := response.(httptransport.StatusCoder); ok {
		status = sc.StatusCode()
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// Writes the iCalendar feed
func encodeCalendarResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	cal, ok := response.(calendarResponse)
	if !ok {
		return fmt.Errorf("illegal calendar response")
	}
	w.Header().Set("Content-Type", calendar.ContentType)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(cal))
	return err
}

// Builds an error response based on the incoming error
func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	setRequestIDHeader(ctx, w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(errorStatus(err))
	ret := errorResponse{
		basicResponse: basicResponse{false, nil},
		Message:       err.Error(),
		Error:         ErrCodeUnknown,
	}
	if cd, ok := err.(errorCoder); ok {
		ret.Error = cd.ErrorCode()
	}
	if db, ok := err.(dataBearer); ok {
		if data := db.Data(); data != nil {
			if err, ok := data.(error); ok {
				ret.Details = err.Error()
			} else {
				ret.Details = data
			}
		}
	}
	json.NewEncoder(w).Encode(&ret)
}

func errorStatus(err error) int {
	if st, ok := err.(httpStatuser); ok {
		return st.Status()
	}
	return http.StatusInternalServerError
}

// logError writes failed calls to the request's log. Client errors are only warnings
func logError(ctx context.Context, err error) {
	logger := ctxhelper.Logger(ctx).WithError(err)
	if status := errorStatus(err); status < http.StatusInternalServerError {
		logger.WithField(log.FldStatus, status).Warn("Request failed")
		return
	}
	if db, ok := err.(dataBearer); ok {
		if cause, ok := db.Data().(error); ok {
			logger = logger.WithField("cause", cause.Error())
		}
	}
	logger.Error("Request failed")
}

// logRequest writes one debug entry per handled request
func logRequest(ctx context.Context, code int, r *http.Request) {
	logger, ok := ctx.Value(ctxhelper.KeyLogger).(*logrus.Entry)
	if !ok {
		return
	}
	fields := logrus.Fields{
		log.FldMethod: r.Method,
		log.FldPath:   r.URL.Path,
		log.FldStatus: code,
	}
	if start, ok := ctx.Value(keyRequestStart).(time.Time); ok {
		fields[log.FldDuration] = time.Since(start)
	}
	logger.WithFields(fields).Debug("Request handled")
}

// makeContextInjector puts the request ID and a logger carrying it into the request's context. Request IDs sent by
// the client are kept, all others get a fresh one
func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		id := strings.TrimSpace(r.Header.Get(ctxhelper.RequestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		ctx = context.WithValue(ctx, keyRequestStart, time.Now())
		ctx = context.WithValue(ctx, ctxhelper.KeyRequestID, id)
		return context.WithValue(ctx, ctxhelper.KeyLogger, logger.WithField(log.FldRequestID, id))
	}
}

// setRequestIDHeader returns the request ID to the client
func setRequestIDHeader(ctx context.Context, w http.ResponseWriter) context.Context {
	if id := ctxhelper.RequestID(ctx); id != "" {
		w.Header().Set(ctxhelper.RequestIDHeader, id)
	}
	return ctx
}
