package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"towncore/internal/dataset"
	"towncore/internal/infra/datasource"
)

// importer is implemented by the blob and SQL dataset sources.
type importer interface {
	Import(ctx context.Context, ds dataset.Dataset) error
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Copy a JSON or CSV dataset file into the configured dataset source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			ds, err := dataset.Decode(args[0], f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			if err := ds.Validate(); err != nil {
				return err
			}

			src, closeFn, err := datasource.Open(ctx, a.cfg.Dataset)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			dst, ok := src.(importer)
			if !ok {
				return fmt.Errorf("dataset driver %q does not accept imports", a.cfg.Dataset.Driver)
			}
			if err := dst.Import(ctx, ds); err != nil {
				return fmt.Errorf("import into %s: %w", src.Describe(), err)
			}
			a.logger.Info("dataset imported", "source", src.Describe(), "towns", len(ds.Towns), "vassalships", len(ds.Vassalships))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d towns and %d vassalships into %s\n", len(ds.Towns), len(ds.Vassalships), src.Describe())
			return err
		},
	}
}
