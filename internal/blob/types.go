// Package blob selects the object store that dataset files are read from.
package blob

import (
	"towncore/internal/blob/core"
)

type (
	// Driver identifies an object store backend.
	Driver = core.Driver
	// Object describes a stored file.
	Object = core.Object
	// Store is the object store interface.
	Store = core.Store
)

const (
	// DriverFilesystem is the local directory driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3 / MinIO driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
)

// ErrNotFound is returned when an object is missing.
var ErrNotFound = core.ErrNotFound
