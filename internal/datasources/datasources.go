// Package datasources lets the assistant search and fetch curated public
// geodata for use in generated scripts.
package datasources

import (
	"context"
	"encoding/json"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// Dataset describes one searchable dataset offered by a source.
type Dataset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Format      string   `json:"format"`
	Keywords    []string `json:"keywords"`
}

// FetchResult is a fetched dataset rendered as GeoJSON.
type FetchResult struct {
	Name         string          `json:"name"`
	Format       string          `json:"format"`
	FeatureCount int             `json:"featureCount"`
	GeoJSON      json.RawMessage `json:"geojson"`
}

// Source is one provider of curated datasets.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Dataset, error)
	Fetch(ctx context.Context, id string, extent *models.MapExtent) (*FetchResult, error)
}

// Registry aggregates sources behind one search surface.
type Registry struct {
	sources []Source
}

// NewRegistry creates a registry over the given sources.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// Search queries every source in order and merges the results up to limit.
// A failing source is skipped; search is best-effort.
func (r *Registry) Search(ctx context.Context, query string, limit int) []Dataset {
	if limit <= 0 {
		limit = 10
	}

	var merged []Dataset
	for _, source := range r.sources {
		if len(merged) >= limit {
			break
		}
		datasets, err := source.Search(ctx, query, limit-len(merged))
		if err != nil {
			continue
		}
		merged = append(merged, datasets...)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Fetch resolves a dataset by source name and id.
func (r *Registry) Fetch(ctx context.Context, sourceName, id string, extent *models.MapExtent) (*FetchResult, error) {
	for _, source := range r.sources {
		if source.Name() == sourceName {
			return source.Fetch(ctx, id, extent)
		}
	}
	return nil, &UnknownSourceError{Name: sourceName}
}

// UnknownSourceError reports a fetch against a source the registry does not
// hold.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return "unknown data source: " + e.Name
}
