package qrcode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := NewStore(t.TempDir(), "http://example.org:8000/", logrus.NewEntry(logger))
	require.NoError(t, err)
	return s
}

func TestStore_Generate(t *testing.T) {
	s := newTestStore(t)
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	uri, err := s.Generate("Launch\n2025-06-01\nKickoff")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "http://example.org:8000"+URLPath), uri)
	assert.True(t, strings.HasSuffix(uri, ".png"), uri)

	name, ok := s.fileName(uri)
	require.True(t, ok)
	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.True(t, len(data) > 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))

	other, err := s.Generate("Launch\n2025-06-01\nKickoff")
	require.NoError(t, err)
	assert.NotEqual(t, uri, other)
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	uri, err := s.Generate("content")
	require.NoError(t, err)
	name, ok := s.fileName(uri)
	require.True(t, ok)

	require.NoError(t, s.Remove(uri))
	_, err = os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine
	assert.NoError(t, s.Remove(uri))
}

func TestStore_RemoveIgnoresForeignURIs(t *testing.T) {
	s := newTestStore(t)
	keep := filepath.Join(s.Dir(), "keep.png")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0644))

	for _, uri := range []string{
		"",
		"http://example.org/other/file.png",
		"http://example.org" + URLPath + "keep.png",
		"http://example.org" + URLPath + "../secret.png",
		"http://example.org" + URLPath,
	} {
		assert.NoError(t, s.Remove(uri), uri)
	}
	_, err := os.Stat(keep)
	assert.NoError(t, err)
}
