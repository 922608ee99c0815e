package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"towncore/internal/core"
	"towncore/pkg/domain"
)

// summary is the JSON document printed by the report command.
type summary struct {
	Source     string                            `json:"source"`
	Load       core.LoadReport                   `json:"load"`
	Stats      core.Stats                        `json:"stats"`
	Nearest    domain.TownID                     `json:"nearest,omitempty"`
	Farthest   domain.TownID                     `json:"farthest,omitempty"`
	ByName     []domain.TownID                   `json:"by_name"`
	ByDistance []domain.TownID                   `json:"by_distance"`
	Taxes      map[domain.TownID]int             `json:"retained_tax"`
	Deepest    map[domain.TownID][]domain.TownID `json:"deepest_paths,omitempty"`
	Metrics    core.RegistryMetrics              `json:"metrics"`
}

func newReportCmd(a *app) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Load the configured dataset and print a JSON summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			metrics := core.NewExpvarRecorder("")
			opts := []core.Option{
				core.WithLogger(core.NewSlogLogger(a.logger)),
				core.WithMetricsRecorder(metrics),
			}
			if trace {
				opts = append(opts, core.WithTracer(core.NewSpanLog(cmd.ErrOrStderr())))
			}
			svc := core.NewService(opts...)

			source, report, err := a.load(ctx, svc)
			if err != nil {
				return err
			}
			out := summary{Source: source, Load: report, Taxes: map[domain.TownID]int{}}
			if out.ByName, err = svc.AllByName(ctx); err != nil {
				return err
			}
			if out.ByDistance, err = svc.AllByDistance(ctx); err != nil {
				return err
			}
			if out.Stats, err = svc.Stats(ctx); err != nil {
				return err
			}
			if out.Stats.Towns > 0 {
				if out.Nearest, err = svc.MinDistance(ctx); err != nil {
					return err
				}
				if out.Farthest, err = svc.MaxDistance(ctx); err != nil {
					return err
				}
			}
			towns, err := svc.Towns(ctx, out.ByName)
			if err != nil {
				return err
			}
			for _, town := range towns {
				if out.Taxes[town.ID], err = svc.RetainedTax(ctx, town.ID); err != nil {
					return err
				}
				if town.HasMaster() {
					continue
				}
				if out.Deepest == nil {
					out.Deepest = map[domain.TownID][]domain.TownID{}
				}
				if out.Deepest[town.ID], err = svc.DeepestDescendantPath(ctx, town.ID); err != nil {
					return err
				}
			}
			out.Metrics = metrics.Metrics()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "write one JSON span per registry operation to stderr")
	return cmd
}
