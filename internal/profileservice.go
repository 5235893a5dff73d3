package internal

import (
	"fmt"
	"net/http"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ProfileService gives read access to the static profile list
type ProfileService interface {
	// List returns all profiles
	List(ctx context.Context) ([]models.Profile, error)
	// Get returns the profile with the given ID
	Get(ctx context.Context, id string) (*models.Profile, error)
}

// -- Profile service implementation -----------------------------------------------------------------------------------

type profileService struct {
	logger   *logrus.Entry
	profiles repos.ProfileRepo
}

// NewProfileService creates a new profile service instance reading from the provided repository
func NewProfileService(pr repos.ProfileRepo, logger *logrus.Entry) ProfileService {
	return &profileService{
		logger:   logger,
		profiles: pr,
	}
}

// List returns all profiles
func (s *profileService) List(_ context.Context) ([]models.Profile, error) {
	ret, err := s.profiles.List()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list profiles")
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError, "Error while listing profiles", err)
	}
	return ret, nil
}

// Get returns the profile with the given ID
func (s *profileService) Get(_ context.Context, id string) (*models.Profile, error) {
	p, err := s.profiles.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeProfileNotFound,
				fmt.Sprintf("Profile '%s' does not exist", id),
			)
		}
		s.logger.WithError(err).WithField(log.FldID, id).Error("Failed to load profile")
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving profile '%s'", id), err,
		)
	}
	return p, nil
}
