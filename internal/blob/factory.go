package blob

import (
	"context"
	"fmt"

	"towncore/internal/infra/blob/fs"
	"towncore/internal/infra/blob/memory"
	"towncore/internal/infra/blob/s3"
)

// S3Config configures the S3 driver.
type S3Config = s3.Config

// Config selects and configures a driver.
type Config struct {
	Driver Driver
	// Root is the directory served by the fs driver.
	Root string
	S3   S3Config
}

// Open constructs the configured store. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return fs.New(cfg.Root)
	case DriverS3:
		return s3.New(ctx, cfg.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory() Store { return memory.New() }
