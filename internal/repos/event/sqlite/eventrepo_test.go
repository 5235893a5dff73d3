package sqlite

import (
	"testing"
	"time"

	"github.com/derWhity/eventqr/internal/migrate"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *EventRepo {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: opens a database of its own
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	require.NoError(t, migrate.ExecuteMigrationsOnDb(db, entry))
	return New(db, entry)
}

func newEvent(name string, date models.Date) *models.Event {
	return &models.Event{
		Name:        name,
		Description: name + " description",
		Date:        date,
		QRCode:      "http://localhost/media/qr_codes/" + name + ".png",
	}
}

func TestEventRepo_CreateAndGet(t *testing.T) {
	r := newTestRepo(t)
	date := models.Date{Year: 2025, Month: time.June, Day: 1}
	ev := newEvent("Launch", date)

	require.NoError(t, r.Create(ev))
	assert.NotZero(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())

	got, err := r.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "Launch", got.Name)
	assert.Equal(t, "Launch description", got.Description)
	assert.Equal(t, date, got.Date)
	assert.Equal(t, ev.QRCode, got.QRCode)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestEventRepo_GetMissing(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.GetByID(42)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestEventRepo_ListInIDOrder(t *testing.T) {
	r := newTestRepo(t)

	list, err := r.List()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	// Later dates first to make sure the order does not come from the date index
	for i, day := range []int{20, 10, 1} {
		require.NoError(t, r.Create(newEvent(string(rune('A'+i)), models.Date{Year: 2025, Month: time.May, Day: day})))
	}
	list, err = r.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
	assert.Equal(t, "A", list[0].Name)
}

func TestEventRepo_Update(t *testing.T) {
	r := newTestRepo(t)
	ev := newEvent("Launch", models.Date{Year: 2025, Month: time.June, Day: 1})
	require.NoError(t, r.Create(ev))

	ev.Name = "Relaunch"
	ev.Date = models.Date{Year: 2025, Month: time.July, Day: 2}
	require.NoError(t, r.Update(ev))

	got, err := r.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", got.Name)
	assert.Equal(t, "2025-07-02", got.Date.String())

	missing := newEvent("Ghost", ev.Date)
	missing.ID = ev.ID + 100
	assert.Equal(t, repos.ErrEntityNotExisting, r.Update(missing))
}

func TestEventRepo_Delete(t *testing.T) {
	r := newTestRepo(t)
	ev := newEvent("Launch", models.Date{Year: 2025, Month: time.June, Day: 1})
	require.NoError(t, r.Create(ev))

	require.NoError(t, r.Delete(ev.ID))
	_, err := r.GetByID(ev.ID)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
	assert.Equal(t, repos.ErrEntityNotExisting, r.Delete(ev.ID))
}
