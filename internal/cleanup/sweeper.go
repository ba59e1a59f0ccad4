// Package cleanup purges expired temporary uploads: their bytes on the
// temporary disk and their records, soft-deleted ones included.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filepond/internal/common"
	"github.com/dmitrijs2005/filepond/internal/dbx"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/dmitrijs2005/filepond/internal/repositories/uploads"
	"github.com/dmitrijs2005/filepond/internal/storage"
)

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// RepositoryFactory binds an upload repository to a connection or
// transaction.
type RepositoryFactory func(db dbx.DBTX) uploads.Repository

type Sweeper struct {
	db       DB
	repos    RepositoryFactory
	disks    storage.Disks
	fallback string
	logger   logging.Logger
}

// NewSweeper returns a sweeper removing blobs from the disk each record
// names. Records without a disk use fallback.
func NewSweeper(db DB, repos RepositoryFactory, disks storage.Disks, fallback string, logger logging.Logger) *Sweeper {
	return &Sweeper{db: db, repos: repos, disks: disks, fallback: fallback, logger: logger}
}

// Run purges every upload expired at now and returns how many were
// removed. A failing upload is logged and skipped; the failures are
// returned joined.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repos(s.db).SelectExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("select expired: %w", err)
	}

	s.logger.Info(ctx, "sweeping expired uploads", "count", len(expired))

	var (
		purged int
		errs   []error
	)
	for _, u := range expired {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.purge(ctx, u); err != nil {
			s.logger.Error(ctx, "purge failed", "id", u.ID, "disk", u.Disk, "filepath", u.Filepath, "err", err)
			errs = append(errs, fmt.Errorf("purge %s: %w", u.ID, err))
			continue
		}
		s.logger.Debug(ctx, "purged upload", "id", u.ID, "filepath", u.Filepath)
		purged++
	}

	s.logger.Info(ctx, "sweep finished", "purged", purged, "failed", len(errs))
	return purged, errors.Join(errs...)
}

// purge removes the record and then the blob in one transaction, so a
// blob that cannot be removed keeps its record for the next sweep.
func (s *Sweeper) purge(ctx context.Context, u *models.Upload) error {
	name := u.Disk
	if name == "" {
		name = s.fallback
	}
	disk, err := s.disks.Disk(name)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := s.repos(tx).Delete(ctx, u.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return disk.Delete(ctx, u.Filepath)
	})
}
