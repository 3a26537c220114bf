package distribution

import (
	"context"
	"fmt"

	"winsbygroup.com/licserver/internal/update"
	"winsbygroup.com/licserver/internal/vercmp"
)

// UpdateSource returns the active updates of an application with their
// targeting lists loaded.
type UpdateSource interface {
	ActiveForApplication(ctx context.Context, applicationID int64) ([]update.Update, error)
}

type Catalog struct {
	updates UpdateSource
}

func NewCatalog(updates UpdateSource) *Catalog {
	return &Catalog{updates: updates}
}

// Candidates returns the active updates of the application that are newer
// than installed.
func (c *Catalog) Candidates(ctx context.Context, applicationID int64, installed string) ([]update.Update, error) {
	all, err := c.updates.ActiveForApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load update catalog: %w", err)
	}

	out := make([]update.Update, 0, len(all))
	for _, u := range all {
		if u.ApplicationID != applicationID || !u.Active {
			continue
		}
		if vercmp.Newer(u.Version, installed) {
			out = append(out, u)
		}
	}
	return out, nil
}
