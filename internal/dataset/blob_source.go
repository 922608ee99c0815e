package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"towncore/internal/blob"
)

// VassalshipsKey returns the object key that holds the vassalships for a CSV
// towns object: the sibling file vassalships.csv.
func VassalshipsKey(townsKey string) string {
	return path.Join(path.Dir(townsKey), "vassalships.csv")
}

// BlobSource reads a dataset object from an object store. JSON objects carry
// the whole dataset; a CSV towns object picks up an optional sibling
// vassalships.csv.
type BlobSource struct {
	Store blob.Store
	Key   string
}

// Describe implements Source.
func (s BlobSource) Describe() string {
	return fmt.Sprintf("blob:%s/%s", s.Store.Driver(), s.Key)
}

// Load implements Source.
func (s BlobSource) Load(ctx context.Context) (Dataset, error) {
	_, rc, err := s.Store.Open(ctx, s.Key)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset %s: %w", s.Key, err)
	}
	ds, err := Decode(s.Key, rc)
	_ = rc.Close()
	if err != nil {
		return ds, err
	}
	if !strings.EqualFold(path.Ext(s.Key), ".csv") {
		return ds, nil
	}
	linksKey := VassalshipsKey(s.Key)
	if linksKey == s.Key {
		return ds, nil
	}
	_, rc, err = s.Store.Open(ctx, linksKey)
	if errors.Is(err, blob.ErrNotFound) {
		return ds, nil
	}
	if err != nil {
		return ds, fmt.Errorf("open vassalships %s: %w", linksKey, err)
	}
	defer func() { _ = rc.Close() }()
	ds.Vassalships, err = DecodeVassalshipsCSV(rc)
	return ds, err
}

// Import writes ds under Key in the format Load expects: a JSON document, or
// for a .csv key the towns file plus its sibling vassalships.csv.
func (s BlobSource) Import(ctx context.Context, ds Dataset) error {
	var buf bytes.Buffer
	if !strings.EqualFold(path.Ext(s.Key), ".csv") {
		if err := EncodeJSON(&buf, ds); err != nil {
			return err
		}
		return s.put(ctx, s.Key, &buf, "application/json")
	}
	linksKey := VassalshipsKey(s.Key)
	if linksKey == s.Key {
		return fmt.Errorf("towns key %q collides with %s", s.Key, linksKey)
	}
	if err := EncodeTownsCSV(&buf, ds.Towns); err != nil {
		return err
	}
	if err := s.put(ctx, s.Key, &buf, "text/csv"); err != nil {
		return err
	}
	buf.Reset()
	if err := EncodeVassalshipsCSV(&buf, ds.Vassalships); err != nil {
		return err
	}
	return s.put(ctx, linksKey, &buf, "text/csv")
}

func (s BlobSource) put(ctx context.Context, key string, buf *bytes.Buffer, contentType string) error {
	if _, err := s.Store.Put(ctx, key, buf, contentType); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Objects lists the stored objects next to Key, i.e. the datasets that share
// its directory.
func (s BlobSource) Objects(ctx context.Context) ([]blob.Object, error) {
	prefix := path.Dir(s.Key)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}
	objs, err := s.Store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return objs, nil
}
