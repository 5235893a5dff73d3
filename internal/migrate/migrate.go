// Package migrate handles SQL database migration for the event database
package migrate

import (
	"database/sql"

	"github.com/derWhity/eventqr/internal/repos"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var migrations []dbMigration

type dbMigration struct {
	Version uint
	Queries []string
}

// done checks if the migration has already been applied successfully
func (mig *dbMigration) done(db *sqlx.DB) (bool, error) {
	var success bool
	err := db.Get(&success, `SELECT success FROM Migrations WHERE version = ?`, mig.Version)
	if err != nil && err != sql.ErrNoRows {
		return false, errors.Wrap(err, "failed to fetch version information")
	}
	return success, nil
}

// Execute runs the current DB migration on the given database. All queries of a migration run inside one transaction
func (mig *dbMigration) Execute(db *sqlx.DB, logger *logrus.Entry) error {
	success, err := mig.done(db)
	if err != nil {
		return err
	}
	if success {
		return nil
	}
	logger.Infof("Executing DB migration #%d", mig.Version)
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "Execute: Failed to start transaction")
	}
	for i, query := range mig.Queries {
		logger.Debugf("Query %d of %d...", i+1, len(mig.Queries))
		if _, err := tx.Exec(query); err != nil {
			return repos.DoRollback(tx, errors.Wrapf(err, "Execute: Query #%d failed", i+1))
		}
	}
	if _, err := tx.Exec(`REPLACE INTO Migrations(version, success) VALUES(?, 1)`, mig.Version); err != nil {
		return repos.DoRollback(tx, errors.Wrap(err, "Execute: Failed to store migration status"))
	}
	return errors.Wrap(tx.Commit(), "Execute: Commit failed")
}

// ExecuteMigrationsOnDb executes the database migrations on the given database instance
func ExecuteMigrationsOnDb(db *sqlx.DB, logger *logrus.Entry) error {
	// Create the migrations table if it does not exist, yet
	query := `CREATE TABLE IF NOT EXISTS Migrations (
                version   INTEGER NOT NULL,
                success   INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY(version)
            )`
	if _, err := db.Exec(query); err != nil {
		logger.WithError(err).Error("Failed to create migrations table")
		return err
	}
	for _, mig := range migrations {
		if err := mig.Execute(db, logger); err != nil {
			logger.WithError(err).Errorf("Failed to execute migration #%d", mig.Version)
			return err
		}
	}
	return nil
}

// CurrentVersion returns the highest migration version that has been applied successfully - 0 if there is none
func CurrentVersion(db *sqlx.DB) (uint, error) {
	var version uint
	err := db.Get(&version, `SELECT COALESCE(MAX(version), 0) FROM Migrations WHERE success = 1`)
	return version, errors.Wrap(err, "CurrentVersion")
}

// For now, the migrations are part of the package...
func init() {
	migrations = []dbMigration{
		{
			Version: 1,
			Queries: []string{
				`CREATE TABLE "Events" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(128) NOT NULL DEFAULT '',
                    description TEXT NOT NULL DEFAULT '',
                    date TEXT NOT NULL DEFAULT '',
                    createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                    updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                );`,
			},
		},
		{
			Version: 2,
			Queries: []string{
				`ALTER TABLE Events ADD COLUMN qrCode VARCHAR(255) NOT NULL DEFAULT '';`,
				`CREATE INDEX idx_event_date ON Events (date ASC);`,
			},
		},
	}
}
