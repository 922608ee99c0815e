package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"towncore/internal/blob"
	"towncore/internal/infra/datasource"
)

// lister is implemented by sources backed by an object store.
type lister interface {
	Objects(ctx context.Context) ([]blob.Object, error)
}

func newDatasetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset objects stored next to the configured blob key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			src, closeFn, err := datasource.Open(ctx, a.cfg.Dataset)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			l, ok := src.(lister)
			if !ok {
				return fmt.Errorf("dataset driver %q cannot list objects", a.cfg.Dataset.Driver)
			}
			objs, err := l.Objects(ctx)
			if err != nil {
				return err
			}
			if objs == nil {
				objs = []blob.Object{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(objs)
		},
	}
}
