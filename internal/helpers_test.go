package internal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/net/context"
)

func newTestLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func testContext() context.Context {
	logger, _ := newTestLogger()
	return context.WithValue(context.Background(), ctxhelper.KeyLogger, logger)
}

// memEventRepo is a repos.EventRepo keeping its events in a map
type memEventRepo struct {
	mu     sync.Mutex
	events map[int64]models.Event
	nextID int64
	err    error
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[int64]models.Event{}, nextID: 1}
}

func (r *memEventRepo) Create(ev *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	ev.ID = r.nextID
	r.nextID++
	r.events[ev.ID] = *ev
	return nil
}

func (r *memEventRepo) Update(ev *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.events[ev.ID]; !ok {
		return repos.ErrEntityNotExisting
	}
	r.events[ev.ID] = *ev
	return nil
}

func (r *memEventRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.events[id]; !ok {
		return repos.ErrEntityNotExisting
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) GetByID(id int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok {
		return nil, repos.ErrEntityNotExisting
	}
	return &ev, nil
}

func (r *memEventRepo) List() ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	ret := make([]models.Event, 0, len(r.events))
	for _, ev := range r.events {
		ret = append(ret, ev)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// memCodeStore is a QRCodeStore that only remembers what it has been asked to do
type memCodeStore struct {
	mu        sync.Mutex
	n         int
	contents  map[string]string
	removed   []string
	genErr    error
	removeErr error
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{contents: map[string]string{}}
}

func (s *memCodeStore) Generate(content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genErr != nil {
		return "", s.genErr
	}
	s.n++
	uri := fmt.Sprintf("http://localhost:8000/media/qr_codes/%d.png", s.n)
	s.contents[uri] = content
	return uri, nil
}

func (s *memCodeStore) Remove(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, uri)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.contents, uri)
	return nil
}

func (s *memCodeStore) has(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contents[uri]
	return ok
}

// staticProfiles is a repos.ProfileRepo over a fixed list
type staticProfiles []models.Profile

func (p staticProfiles) List() ([]models.Profile, error) {
	return append([]models.Profile{}, p...), nil
}

func (p staticProfiles) GetByID(id string) (*models.Profile, error) {
	for _, pr := range p {
		if pr.ID == id {
			ret := pr
			return &ret, nil
		}
	}
	return nil, repos.ErrEntityNotExisting
}

// brokenProfiles is a repos.ProfileRepo failing every call
type brokenProfiles struct {
	err error
}

func (p brokenProfiles) List() ([]models.Profile, error) {
	return nil, p.err
}

func (p brokenProfiles) GetByID(id string) (*models.Profile, error) {
	return nil, p.err
}
