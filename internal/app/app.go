// Package app wires configuration, the database, the disks and the field
// resolver together for the filepond command.
package app

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/filepond/internal/auth"
	"github.com/dmitrijs2005/filepond/internal/cleanup"
	"github.com/dmitrijs2005/filepond/internal/config"
	"github.com/dmitrijs2005/filepond/internal/cryptox"
	"github.com/dmitrijs2005/filepond/internal/dbx"
	"github.com/dmitrijs2005/filepond/internal/field"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/dmitrijs2005/filepond/internal/migrations"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/dmitrijs2005/filepond/internal/repositories/uploads"
	"github.com/dmitrijs2005/filepond/internal/storage"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TempDir is the directory of the temporary disk new uploads are put in.
const TempDir = "filepond/temp"

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	disks   storage.Disks
	crypter *cryptox.Crypter
}

var (
	openDB        = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	migrateUp     = migrations.Up
	timeNow       = time.Now
	newUploadUUID = uuid.NewString
)

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	crypter, err := cryptox.NewCrypter([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("crypter init error: %w", err)
	}

	disks, err := c.Disks(ctx)
	if err != nil {
		return nil, fmt.Errorf("disk init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, disks: disks, crypter: crypter}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) repository(db dbx.DBTX) uploads.Repository {
	return uploads.NewPostgresRepository(db, a.config.Model)
}

// Resolver returns a field resolver over the upload table.
func (a *App) Resolver() *field.Resolver[*models.Upload] {
	return field.New[*models.Upload](
		uploads.NewPostgresRepository(a.db, a.config.Model),
		a.crypter,
		a.disks,
		field.Options{
			TempDisk:       a.config.TempDisk,
			OwnershipAware: a.config.OwnershipAware,
			SoftDeletable:  a.config.SoftDelete,
		},
	)
}

// Context attaches the actor named by the JWT to ctx. An empty token
// leaves ctx anonymous.
func (a *App) Context(ctx context.Context, token string) (context.Context, error) {
	if token == "" {
		return ctx, nil
	}
	if a.config.JWTSecret == "" {
		return nil, fmt.Errorf("actor token given but no JWT secret configured")
	}
	return auth.ContextFromToken(ctx, token, []byte(a.config.JWTSecret))
}

func (a *App) Migrate(ctx context.Context) error {
	a.logger.Info(ctx, "applying migrations")
	if err := migrateUp(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Clear purges the expired temporary uploads.
func (a *App) Clear(ctx context.Context) (int, error) {
	if _, err := a.disks.Disk(a.config.TempDisk); err != nil {
		return 0, err
	}
	s := cleanup.NewSweeper(a.db, a.repository, a.disks, a.config.TempDisk, a.logger)
	return s.Run(ctx, timeNow())
}

// Put stores r on the temporary disk as a new upload owned by the context
// actor and returns the record with the token the form should submit.
func (a *App) Put(ctx context.Context, filename string, r io.Reader) (*models.Upload, string, error) {
	disk, err := a.disks.Disk(a.config.TempDisk)
	if err != nil {
		return nil, "", err
	}

	now := timeNow().UTC()
	id := newUploadUUID()
	name := filepath.Base(filename)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	u := &models.Upload{
		ID:        id,
		Filepath:  path.Join(TempDir, id, name),
		Filename:  name,
		Extension: strings.ToLower(ext),
		Disk:      a.config.TempDisk,
		CreatedBy: auth.Actor(ctx),
		ExpiresAt: now.Add(a.config.Expiration),
		CreatedAt: now,
		UpdatedAt: now,
	}

	br, mimetype, err := sniff(name, r)
	if err != nil {
		return nil, "", err
	}
	u.Mimetypes = mimetype

	if err := disk.Put(ctx, u.Filepath, br, mimetype); err != nil {
		return nil, "", fmt.Errorf("store %s: %w", name, err)
	}

	if err := a.repository(a.db).Create(ctx, u); err != nil {
		_ = disk.Delete(ctx, u.Filepath)
		return nil, "", fmt.Errorf("create upload: %w", err)
	}

	token, err := field.Issue(a.crypter, u.ID)
	if err != nil {
		return nil, "", err
	}

	a.logger.Info(ctx, "upload stored", "id", u.ID, "filepath", u.Filepath, "mimetype", mimetype)
	return u, token, nil
}

// sniff picks the MIME type from the extension, falling back to content
// detection on the first 512 bytes.
func sniff(name string, r io.Reader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	head = head[:n]

	mimetype := mime.TypeByExtension(filepath.Ext(name))
	if mimetype == "" {
		mimetype = http.DetectContentType(head)
	}
	if i := strings.IndexByte(mimetype, ';'); i >= 0 {
		mimetype = strings.TrimSpace(mimetype[:i])
	}
	return io.MultiReader(bytes.NewReader(head), r), mimetype, nil
}
