// Package datasource builds the dataset.Source named by configuration.
package datasource

import (
	"context"
	"fmt"

	"towncore/internal/blob"
	"towncore/internal/config"
	"towncore/internal/dataset"
	"towncore/internal/infra/persistence/postgres"
	"towncore/internal/infra/persistence/sqlite"
)

// Empty is the source used by the "none" driver.
type Empty struct{}

// Describe implements dataset.Source.
func (Empty) Describe() string { return "none" }

// Load implements dataset.Source.
func (Empty) Load(context.Context) (dataset.Dataset, error) { return dataset.Dataset{}, nil }

func noClose() error { return nil }

// Open constructs the configured source. The returned close function releases
// any underlying connection and is never nil on success.
func Open(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, func() error, error) {
	switch cfg.Driver {
	case "", "blob":
		store, err := blob.Open(ctx, BlobConfig(cfg.Blob))
		if err != nil {
			return nil, nil, fmt.Errorf("open blob store: %w", err)
		}
		return dataset.BlobSource{Store: store, Key: cfg.Blob.Key}, noClose, nil
	case "sqlite":
		src, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	case "postgres":
		src, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	case "none":
		return Empty{}, noClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset driver %q", cfg.Driver)
	}
}

// BlobConfig maps configuration onto the blob factory's settings.
func BlobConfig(c config.BlobConfig) blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Driver),
		Root:   c.Root,
		S3: blob.S3Config{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			PathStyle: c.S3.PathStyle,
		},
	}
}
