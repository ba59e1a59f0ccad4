// Package common defines sentinel errors shared by the resolver, the
// repositories and the blob store. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrDecryption is returned when a client-visible reference cannot be
	// decrypted: malformed, forged or encrypted with another key.
	ErrDecryption = errors.New("decryption failed")

	// ErrBlobNotFound is returned when the temporary disk no longer holds
	// the bytes of an upload record.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrUnknownDisk is returned when a disk name is not registered.
	ErrUnknownDisk = errors.New("unknown disk")

	// ErrInvalidPath is returned for keys escaping the disk root.
	ErrInvalidPath = errors.New("invalid path")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrNoActor      = errors.New("no actor in context")
)
