// Package repos contains the repository interfaces needed by the event server
// It exists to prevent circular dependencies between the service package and the repo implementations
package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/derWhity/eventqr/internal/models"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is read, updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
)

// EventRepo defines a repository that handles storing and querying events
type EventRepo interface {
	// Create creates a new event and assigns its ID
	Create(ev *models.Event) error
	// Update updates the given event
	Update(ev *models.Event) error
	// Delete removes the given event
	Delete(id int64) error
	// GetByID returns the Event with the given ID
	GetByID(id int64) (*models.Event, error)
	// List returns all events in ascending ID order
	List() ([]models.Event, error)
}

// ProfileRepo defines a read-only repository of user profiles
type ProfileRepo interface {
	// List returns all profiles in ascending ID order
	List() ([]models.Profile, error)
	// GetByID returns the profile with the given ID
	GetByID(id string) (*models.Profile, error)
}

// -- Helpers for SQLX repos -------------------------------------------------------------------------------------------

// DoRollback rolls back a transaction and catches any error resulting from it while appending the original error
func DoRollback(tx *sqlx.Tx, originalError error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("doRollback: Transaction rollback failed: %v; Recent error: %v", err, originalError)
	}
	return originalError
}
