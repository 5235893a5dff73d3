package internal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// EventService provides service functions for working with events
type EventService interface {
	// List returns all events in ascending ID order
	List(ctx context.Context) ([]models.Event, error)
	// Get returns the event with the given ID
	Get(ctx context.Context, id int64) (*models.Event, error)
	// Create validates and stores a new event together with its QR code image
	Create(ctx context.Context, req models.NewEventRequest) (*models.Event, error)
	// Update replaces name, description and date of an existing event. The QR code image is rendered anew
	Update(ctx context.Context, id int64, req models.NewEventRequest) (*models.Event, error)
	// Delete removes an event and its QR code image
	Delete(ctx context.Context, id int64) error
}

// QRCodeStore renders and removes the QR code images of events
type QRCodeStore interface {
	// Generate renders content into a new image and returns the image's URI
	Generate(content string) (string, error)
	// Remove deletes the image behind the URI
	Remove(uri string) error
}

// -- EventService implementation --------------------------------------------------------------------------------------

// EventService implementation
type eventService struct {
	repo   repos.EventRepo
	codes  QRCodeStore
	logger *logrus.Entry
}

// NewEventService creates a new event service instance
func NewEventService(repo repos.EventRepo, codes QRCodeStore, logger *logrus.Entry) EventService {
	return &eventService{
		repo:   repo,
		codes:  codes,
		logger: logger,
	}
}

// List returns all events in ascending ID order
func (s *eventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List()
	if err != nil {
		return nil, MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Error while listing events",
			err,
		)
	}
	return events, nil
}

// Get returns the event with the given ID
func (s *eventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	ev, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", id),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving event #%d", id), err,
		)
	}
	return ev, nil
}

// Create validates and stores a new event together with its QR code image
func (s *eventService) Create(ctx context.Context, req models.NewEventRequest) (*models.Event, error) {
	ev, err := validateEvent(req)
	if err != nil {
		return nil, err
	}
	if ev.QRCode, err = s.renderCode(ctx, ev); err != nil {
		return nil, err
	}
	if err = s.repo.Create(ev); err != nil {
		s.discardCode(ctx, ev.QRCode)
		return nil, MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Error while storing event",
			err,
		)
	}
	ctxhelper.Logger(ctx).WithField(log.FldID, ev.ID).Info("Event created")
	return ev, nil
}

// Update replaces name, description and date of an existing event
func (s *eventService) Update(ctx context.Context, id int64, req models.NewEventRequest) (*models.Event, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := validateEvent(req)
	if err != nil {
		return nil, err
	}
	original.Name = ev.Name
	original.Description = ev.Description
	original.Date = ev.Date
	oldCode := original.QRCode
	if original.QRCode, err = s.renderCode(ctx, original); err != nil {
		return nil, err
	}
	if err = s.repo.Update(original); err != nil {
		s.discardCode(ctx, original.QRCode)
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(
				http.StatusNotFound,
				ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", id),
			)
		}
		return nil, MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			fmt.Sprintf("Error while updating event #%d", id),
			err,
		)
	}
	s.discardCode(ctx, oldCode)
	return original, nil
}

// Delete removes an existing event from the repository
func (s *eventService) Delete(ctx context.Context, id int64) error {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = s.repo.Delete(id); err != nil {
		if err == repos.ErrEntityNotExisting {
			return MakeError(
				http.StatusNotFound,
				ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", id),
			)
		}
		return MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			fmt.Sprintf("Error while deleting event #%d", id),
			err,
		)
	}
	s.discardCode(ctx, ev.QRCode)
	return nil
}

// renderCode creates the QR code image carrying the event's data
func (s *eventService) renderCode(ctx context.Context, ev *models.Event) (string, error) {
	uri, err := s.codes.Generate(fmt.Sprintf("%s\n%s\n%s", ev.Name, ev.Date, ev.Description))
	if err != nil {
		ctxhelper.Logger(ctx).WithError(err).Error("Failed to render QR code")
		return "", MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeQRCodeFailed,
			"Failed to create the QR code image for the event",
			err,
		)
	}
	return uri, nil
}

// discardCode removes an image nobody refers to any more. Failing to do so only leaves an orphaned file behind
func (s *eventService) discardCode(ctx context.Context, uri string) {
	if uri == "" {
		return
	}
	if err := s.codes.Remove(uri); err != nil {
		ctxhelper.Logger(ctx).WithError(err).WithField(log.FldURL, uri).Warn("Failed to remove QR code image")
	}
}

// validateEvent checks the required fields of an event request and builds the event from it
func validateEvent(req models.NewEventRequest) (*models.Event, error) {
	ev := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
	}
	switch {
	case ev.Name == "":
		return nil, missingField("name", "Event name missing")
	case ev.Description == "":
		return nil, missingField("description", "Event description missing")
	case ev.Date.IsZero():
		return nil, missingField("date", "Event date missing")
	}
	return ev, nil
}

func missingField(field, message string) error {
	return MakeErrorWithData(http.StatusBadRequest, ErrCodeRequiredFieldMissing, message, fieldError{Field: field})
}
