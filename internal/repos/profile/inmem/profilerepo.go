// Package inmem provides a profile repository that works from memory.
package inmem

import (
	"sort"
	"strconv"
	"sync"

	"github.com/derWhity/eventqr/internal/models"
	"github.com/derWhity/eventqr/internal/repos"
	"github.com/pkg/errors"
)

// DefaultProfiles is the static profile list the server ships with
var DefaultProfiles = []models.Profile{
	{ID: "1", Name: "John Doe"},
	{ID: "2", Name: "Jane Smith"},
	{ID: "3", Name: "Alex Johnson"},
}

// ProfileRepo provides a simple in-memory profile storage. Profiles are only added while seeding
type ProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

// New creates a new profile repository filled with the given profiles
func New(seed ...models.Profile) (*ProfileRepo, error) {
	r := &ProfileRepo{
		profiles: make(map[string]models.Profile),
	}
	for _, p := range seed {
		if err := r.add(p); err != nil {
			return nil, errors.Wrap(err, "New")
		}
	}
	return r, nil
}

func (r *ProfileRepo) add(p models.Profile) error {
	if p.ID == "" {
		return errors.Errorf("profile '%s' has no ID", p.Name)
	}
	if _, ok := r.profiles[p.ID]; ok {
		return errors.Errorf("a profile with ID '%s' does already exist", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// List returns all profiles. Numeric IDs are ordered by value, all others lexically after them
func (r *ProfileRepo) List() ([]models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		ret = append(ret, p)
	}
	sort.Slice(ret, func(i, j int) bool {
		return lessID(ret[i].ID, ret[j].ID)
	})
	return ret, nil
}

// GetByID returns the profile with the given ID
func (r *ProfileRepo) GetByID(id string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[id]; ok {
		// Copy the profile
		ret := p
		return &ret, nil
	}
	return nil, repos.ErrEntityNotExisting
}

func lessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
