package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rpupo63/melba-site-backend/errs"
)

// DefaultURLPrefix is where the site serves uploaded images from.
const DefaultURLPrefix = "/images/uploads/"

// DiskStore writes uploads into a directory served under URLPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *DiskStore) Save(ctx context.Context, upload Upload) (string, error) {
	name := uuid.NewString() + upload.Extension
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", errs.NewUploadFailedError(err)
	}
	return s.urlPrefix + name, nil
}

func (s *DiskStore) Owns(path string) bool {
	return strings.HasPrefix(path, s.urlPrefix) && len(path) > len(s.urlPrefix)
}

func (s *DiskStore) Delete(ctx context.Context, path string) error {
	if !s.Owns(path) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(path, s.urlPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
