package migrate

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecuteMigrationsOnDb(t *testing.T) {
	db := openMemDB(t)
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	require.NoError(t, ExecuteMigrationsOnDb(db, entry))
	v, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, v)

	var columns []string
	rows, err := db.Queryx(`SELECT name FROM pragma_table_info('Events')`)
	require.NoError(t, err)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	assert.ElementsMatch(t, []string{"id", "name", "description", "date", "createdAt", "updatedAt", "qrCode"}, columns)

	t.Run("running twice is a no-op", func(t *testing.T) {
		require.NoError(t, ExecuteMigrationsOnDb(db, entry))
		v, err := CurrentVersion(db)
		require.NoError(t, err)
		assert.Equal(t, migrations[len(migrations)-1].Version, v)
	})
}

func TestExecute_FailedMigrationIsRolledBack(t *testing.T) {
	db := openMemDB(t)
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	require.NoError(t, ExecuteMigrationsOnDb(db, entry))

	broken := dbMigration{
		Version: 99,
		Queries: []string{
			`CREATE TABLE Scratch (id INTEGER)`,
			`THIS IS NO SQL`,
		},
	}
	assert.Error(t, broken.Execute(db, entry))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'Scratch'`))
	assert.Zero(t, count)
	done, err := broken.done(db)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCurrentVersion_Empty(t *testing.T) {
	db := openMemDB(t)
	_, err := db.Exec(`CREATE TABLE Migrations (version INTEGER NOT NULL, success INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)
	v, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Zero(t, v)
}
