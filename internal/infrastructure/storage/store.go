// Package storage is the object store behind document ingestion. Objects
// live under {root}/{bucket}/{key}; the content type is kept in a sidecar
// file next to the object.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

const metaSuffix = ".content-type"

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("storage: object already exists")

// ErrInvalidKey rejects keys that would escape the bucket.
var ErrInvalidKey = errors.New("storage: invalid object key")

type Store struct {
	fs     afero.Fs
	bucket string
}

// New roots a store at dir on the local disk.
func New(dir, bucket string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "storage: create root %s", dir)
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), dir), bucket), nil
}

// NewWithFs builds a store on any afero filesystem (tests use afero.NewMemMapFs).
func NewWithFs(fs afero.Fs, bucket string) *Store {
	return &Store{fs: fs, bucket: bucket}
}

func (s *Store) Bucket() string { return s.bucket }

// Path is the externally visible location of key: {bucket}/{key}.
func (s *Store) Path(key string) string { return s.bucket + "/" + key }

func (s *Store) objectName(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if key == "" || clean != key || strings.HasPrefix(key, "../") || strings.HasSuffix(key, metaSuffix) {
		return "", eris.Wrapf(ErrInvalidKey, "key %q", key)
	}
	return filepath.Join(s.bucket, filepath.FromSlash(key)), nil
}

// Put writes r under key and returns the storage path. An existing object is
// never overwritten. A cancelled ctx aborts the copy and removes the partial object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	name, err := s.objectName(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return "", eris.Wrap(err, "storage: mkdir")
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", eris.Wrapf(ErrExists, "key %q", key)
		}
		return "", eris.Wrap(err, "storage: create object")
	}

	_, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = afero.WriteFile(s.fs, name+metaSuffix, []byte(contentType), 0o644)
	}
	if copyErr != nil {
		_ = s.fs.Remove(name)
		_ = s.fs.Remove(name + metaSuffix)
		return "", eris.Wrapf(copyErr, "storage: write %s", key)
	}
	return s.Path(key), nil
}

// Delete removes key and its metadata. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.objectName(key)
	if err != nil {
		return err
	}
	for _, n := range []string{name, name + metaSuffix} {
		if err := s.fs.Remove(n); err != nil && !errors.Is(err, os.ErrNotExist) {
			return eris.Wrapf(err, "storage: delete %s", key)
		}
	}
	return nil
}

// DeletePath removes an object addressed by its storage path ({bucket}/{key}).
func (s *Store) DeletePath(ctx context.Context, storagePath string) error {
	key, ok := strings.CutPrefix(storagePath, s.bucket+"/")
	if !ok {
		return eris.Wrapf(ErrInvalidKey, "path %q outside bucket %q", storagePath, s.bucket)
	}
	return s.Delete(ctx, key)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	name, err := s.objectName(key)
	if err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, name)
	if err != nil {
		return false, eris.Wrapf(err, "storage: stat %s", key)
	}
	return ok, nil
}

// ContentType returns the type recorded at Put time.
func (s *Store) ContentType(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := s.objectName(key)
	if err != nil {
		return "", err
	}
	b, err := afero.ReadFile(s.fs, name+metaSuffix)
	if err != nil {
		return "", eris.Wrapf(err, "storage: read metadata %s", key)
	}
	return string(b), nil
}

// Open returns the object's bytes for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := s.objectName(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: open %s", key)
	}
	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
