// Package qrcode renders the QR code images attached to events and keeps them in the media directory
package qrcode

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	qr "github.com/skip2/go-qrcode"
)

const (
	// URLPath is the path the images are served at, relative to the server's public URL
	URLPath = "/media/qr_codes/"
	// DefaultSize is the edge length of a generated image in pixels
	DefaultSize = 256

	fileExt = ".png"
)

// Store writes QR code images into a directory and hands out the URIs they can be fetched from
type Store struct {
	dir       string
	publicURL string
	size      int
	logger    *logrus.Entry
}

// NewStore creates a store writing to the qr_codes subdirectory of mediaDir. Image URIs are built from publicURL
func NewStore(mediaDir, publicURL string, logger *logrus.Entry) (*Store, error) {
	dir := filepath.Join(mediaDir, "qr_codes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "NewStore: Cannot create directory '%s'", dir)
	}
	return &Store{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		size:      DefaultSize,
		logger:    logger.WithField(log.FldPath, dir),
	}, nil
}

// Dir returns the directory the images are written to
func (s *Store) Dir() string {
	return s.dir
}

// Generate renders content into a new image and returns its URI
func (s *Store) Generate(content string) (string, error) {
	name := uuid.New().String() + fileExt
	if err := qr.WriteFile(content, qr.Medium, s.size, filepath.Join(s.dir, name)); err != nil {
		return "", errors.Wrap(err, "Generate: Failed to write QR code image")
	}
	s.logger.WithField(log.FldFile, name).Debug("QR code image written")
	return s.publicURL + URLPath + name, nil
}

// Remove deletes the image behind the given URI. URIs this store did not hand out are ignored
func (s *Store) Remove(uri string) error {
	name, ok := s.fileName(uri)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "Remove: Cannot delete QR code image '%s'", name)
	}
	s.logger.WithField(log.FldFile, name).Debug("QR code image removed")
	return nil
}

// fileName extracts the image's file name from one of our URIs
func (s *Store) fileName(uri string) (string, bool) {
	i := strings.LastIndex(uri, URLPath)
	if i < 0 {
		return "", false
	}
	name := uri[i+len(URLPath):]
	if name == "" || path.Base(name) != name || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, fileExt)); err != nil {
		return "", false
	}
	return name, true
}
