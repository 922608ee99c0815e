// Package core defines the object store abstraction used to fetch town
// datasets. Drivers live under internal/infra/blob; callers go through
// blob.Open.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete object store backend.
type Driver string

const (
	// DriverFilesystem reads objects from a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 reads objects from an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps objects in process memory (tests).
	DriverMemory Driver = "memory"
)

// Object describes a stored dataset file.
type Object struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Store is the minimal object store surface dataset loading needs. Put
// replaces an existing object; List returns objects sorted by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error)
	Open(ctx context.Context, key string) (Object, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Driver() Driver
}

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("blob: object not found")
