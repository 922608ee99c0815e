package core

import (
	"context"
	"fmt"

	"towncore/internal/dataset"
	"towncore/pkg/domain"
)

// LoadIssue describes a dataset row that Load skipped.
type LoadIssue struct {
	// Kind is "town" or "vassalship".
	Kind   string `json:"kind"`
	Row    int    `json:"row"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Towns       int         `json:"towns"`
	Vassalships int         `json:"vassalships"`
	Skipped     []LoadIssue `json:"skipped,omitempty"`
}

// Load registers every town of ds and then links its vassalships, all under
// one lock. Rows the registry rejects are reported, not fatal; only context
// cancellation aborts the load, leaving the rows applied so far in place.
func (s *Service) Load(ctx context.Context, ds dataset.Dataset) (LoadReport, error) {
	var report LoadReport
	err := s.mutate(ctx, "load", domain.NoID, func() error {
		for i, t := range ds.Towns {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := t.ID
			reason := ""
			switch {
			case id == "" || id == domain.NoID:
				reason = "invalid id"
			case t.Tax < 0:
				reason = fmt.Sprintf("negative tax %d", t.Tax)
			case !domain.InRange(t.X, t.Y):
				reason = "coordinates out of range"
			case !s.registry.Register(id, t.Name, t.X, t.Y, t.Tax):
				reason = "duplicate id"
			}
			if reason != "" {
				report.Skipped = append(report.Skipped, LoadIssue{Kind: "town", Row: i + 1, ID: string(t.ID), Reason: reason})
				continue
			}
			report.Towns++
		}
		for i, v := range ds.Vassalships {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.link(v.Vassal, v.Master); err != nil {
				report.Skipped = append(report.Skipped, LoadIssue{Kind: "vassalship", Row: i + 1, ID: string(v.Vassal), Reason: err.Error()})
				continue
			}
			report.Vassalships++
		}
		return nil
	})
	if err == nil && len(report.Skipped) > 0 {
		s.logger.Warn("dataset rows skipped", "skipped", len(report.Skipped), "towns", report.Towns, "vassalships", report.Vassalships)
	}
	return report, err
}
