// Package models defines data models persisted in the database.
package models

import "time"

// Upload describes one temporary file received from the upload widget.
// The bytes live on the temporary disk under Filepath.
type Upload struct {
	ID string
	// Filepath is relative to the root of Disk.
	Filepath  string
	Filename  string
	Extension string
	Mimetypes string
	Disk      string
	// CreatedBy is the owner, nil for anonymous uploads.
	CreatedBy *string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt is set when the record was soft-deleted.
	DeletedAt *time.Time
}

func (u *Upload) GetID() string       { return u.ID }
func (u *Upload) GetFilepath() string { return u.Filepath }
func (u *Upload) GetFilename() string { return u.Filename }
func (u *Upload) GetMimetype() string { return u.Mimetypes }
func (u *Upload) GetExtension() string {
	return u.Extension
}

// OwnedBy reports whether the upload belongs to actor.
func (u *Upload) OwnedBy(actor string) bool {
	return u.CreatedBy != nil && *u.CreatedBy == actor
}

// Expired reports whether the upload is past its expiry at now.
func (u *Upload) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && !u.ExpiresAt.After(now)
}
