// Package storage provides the named disks that hold upload bytes: the
// temporary disk the upload widget writes to and any permanent disks
// files are copied to afterwards.
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dmitrijs2005/filepond/internal/common"
)

// Disk is a key-addressed byte store. Keys are slash-separated paths
// relative to the disk root. Missing keys yield common.ErrBlobNotFound.
type Disk interface {
	// Path returns the physical location of key: an absolute filesystem
	// path for local disks, the full object key for object stores.
	Path(key string) string
	Exists(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Disks maps disk names to disks.
type Disks map[string]Disk

// Disk returns the disk registered under name.
func (d Disks) Disk(name string) (Disk, error) {
	disk, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownDisk, name)
	}
	return disk, nil
}

// Names lists registered disk names in sorted order.
func (d Disks) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy streams key from src into dst under dstKey.
func Copy(ctx context.Context, src Disk, key string, dst Disk, dstKey string, contentType string) error {
	r, err := src.Open(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := dst.Put(ctx, dstKey, r, contentType); err != nil {
		return fmt.Errorf("put %s: %w", dstKey, err)
	}
	return nil
}
