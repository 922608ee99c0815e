// Package dataset describes bulk town data that can be loaded into a
// registry, and decodes it from JSON, CSV and SQL sources.
package dataset

import (
	"context"
	"fmt"

	"towncore/pkg/domain"
)

// Town is one town row of a dataset.
type Town struct {
	ID   domain.TownID `json:"id"`
	Name string        `json:"name"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	Tax  int           `json:"tax"`
}

// Vassalship is one master/vassal edge of a dataset.
type Vassalship struct {
	Vassal domain.TownID `json:"vassal"`
	Master domain.TownID `json:"master"`
}

// Dataset is a set of towns plus the vassalships between them. Vassalships
// are applied in order after every town is registered.
type Dataset struct {
	Towns       []Town       `json:"towns"`
	Vassalships []Vassalship `json:"vassalships"`
}

// Source produces a dataset.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
	// Describe names the source for logs and reports.
	Describe() string
}

// Validate checks rows in isolation: ids present, tax non-negative,
// coordinates within ±domain.MaxCoord, no self-vassalship. It does not check
// duplicate ids or cycles; the registry rejects those at load time.
func (d Dataset) Validate() error {
	var errs []error
	for i, t := range d.Towns {
		switch {
		case t.ID == "" || t.ID == domain.NoID:
			errs = append(errs, fmt.Errorf("town[%d]: %w: missing id", i, domain.ErrInvalidTown))
		case t.Tax < 0:
			errs = append(errs, fmt.Errorf("town[%d] %q: %w: negative tax", i, t.ID, domain.ErrInvalidTown))
		case !domain.InRange(t.X, t.Y):
			errs = append(errs, fmt.Errorf("town[%d] %q: %w: coordinates out of range", i, t.ID, domain.ErrInvalidTown))
		}
	}
	for i, v := range d.Vassalships {
		if v.Vassal == "" || v.Master == "" || v.Vassal == v.Master {
			errs = append(errs, fmt.Errorf("vassalship[%d]: %w: %q under %q", i, domain.ErrInvalidLink, v.Vassal, v.Master))
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}
	return nil
}
