package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filepond/internal/common"
)

// LocalDisk stores blobs under a root directory on the local filesystem.
type LocalDisk struct {
	root string
}

// NewLocalDisk creates root if needed and returns a disk rooted there.
func NewLocalDisk(root string) (*LocalDisk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("abs %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &LocalDisk{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *LocalDisk) Root() string { return d.root }

// Path joins key onto the root. It does not check that key stays inside
// the root; every other method does.
func (d *LocalDisk) Path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}

func (d *LocalDisk) resolve(key string) (string, error) {
	p := d.Path(key)
	if p != d.root && !strings.HasPrefix(p, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidPath, key)
	}
	return p, nil
}

func notFound(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", common.ErrBlobNotFound, key)
	}
	return err
}

func (d *LocalDisk) Exists(ctx context.Context, key string) (bool, error) {
	p, err := d.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (d *LocalDisk) Size(ctx context.Context, key string) (int64, error) {
	p, err := d.resolve(key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, notFound(key, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s", common.ErrBlobNotFound, key)
	}
	return info.Size(), nil
}

func (d *LocalDisk) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, notFound(key, err)
	}
	return b, nil
}

func (d *LocalDisk) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, notFound(key, err)
	}
	if info, err := f.Stat(); err != nil || info.IsDir() {
		f.Close()
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", common.ErrBlobNotFound, key)
	}
	return f, nil
}

// Put writes r to key atomically, creating parent directories.
func (d *LocalDisk) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	p, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Delete removes key. Deleting a missing key is not an error.
func (d *LocalDisk) Delete(ctx context.Context, key string) error {
	p, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
