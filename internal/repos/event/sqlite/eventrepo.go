// Package sqlite provides an event repository that stores its data inside a SQLite database
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/jmoiron/sqlx"
)

const (
	eventFields = `name, description, date, qrCode, createdAt, updatedAt`
)

// EventRepo is an repository that stores its data inside a SQLite database
type EventRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new event repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *EventRepo {
	return &EventRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new event
func (r *EventRepo) Create(ev *models.Event) error {
	r.logger.WithField("name", ev.Name).Debug("Adding new event")
	query := fmt.Sprintf("INSERT INTO Events(%s) VALUES(?, ?, ?, ?, datetime('now'), datetime('now'))", eventFields)
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	res, err := tx.Exec(query, ev.Name, ev.Description, ev.Date, ev.QRCode)
	if err != nil {
		return repos.DoRollback(tx, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return repos.DoRollback(tx, err)
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	// Setting the dates like this should be enough for now
	ev.ID = id
	ev.CreatedAt = time.Now()
	ev.UpdatedAt = ev.CreatedAt
	return nil
}

// Update updates the given event
func (r *EventRepo) Update(ev *models.Event) error {
	r.logger.WithField(log.FldID, ev.ID).Debug("Updating event")
	query := `UPDATE Events SET name = ?, description = ?, date = ?, qrCode = ?, updatedAt = datetime('now')
        WHERE id = ?`
	res, err := r.db.Exec(query, ev.Name, ev.Description, ev.Date, ev.QRCode, ev.ID)
	if err != nil {
		return err
	}
	ev.UpdatedAt = time.Now()
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// Delete removes the given event
func (r *EventRepo) Delete(id int64) error {
	r.logger.WithField(log.FldID, id).Debug("Deleting event")
	query := "DELETE FROM Events WHERE id = ?"
	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// GetByID returns the Event with the given ID
func (r *EventRepo) GetByID(id int64) (*models.Event, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading event")
	query := fmt.Sprintf("SELECT id, %s FROM Events WHERE id = ?", eventFields)
	var ev models.Event
	err := r.db.Get(&ev, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, err
	}
	return &ev, nil
}

// List returns all events in ascending ID order
func (r *EventRepo) List() ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM Events ORDER BY id`, eventFields)
	ret := []models.Event{}
	if err := r.db.Select(&ret, query); err != nil {
		return nil, err
	}
	r.logger.WithField(log.FldCount, len(ret)).Debug("Listed events")
	return ret, nil
}
