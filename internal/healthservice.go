package internal

import (
	"net/http"

	"github.com/derWhity/eventqr/internal/migrate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/net/context"
)

// HealthStatus is reported by the health check
type HealthStatus struct {
	Version       string `json:"version"`
	SchemaVersion uint   `json:"schemaVersion"`
}

// HealthService reports whether the server is able to answer requests
type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}

type healthService struct {
	db      *sqlx.DB
	version string
}

// NewHealthService creates a health service checking the given database
func NewHealthService(db *sqlx.DB, version string) HealthService {
	return &healthService{db: db, version: version}
}

// Check pings the database and reads the schema version from it
func (s *healthService) Check(ctx context.Context) (*HealthStatus, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, MakeErrorWithData(http.StatusServiceUnavailable, ErrCodeUnavailable, "Database not reachable", err)
	}
	v, err := migrate.CurrentVersion(s.db)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusServiceUnavailable, ErrCodeUnavailable, "Database schema unknown", err)
	}
	return &HealthStatus{Version: s.version, SchemaVersion: v}, nil
}
