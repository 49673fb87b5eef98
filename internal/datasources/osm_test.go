package datasources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartoflow/gis-copilot/internal/models"
)

func TestOSMSearch(t *testing.T) {
	osm := NewOSM()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{
			name:    "building keyword",
			query:   "building footprints",
			wantIDs: []string{"osm-buildings"},
		},
		{
			name:    "road synonyms",
			query:   "streets",
			wantIDs: []string{"osm-roads"},
		},
		{
			name:    "water terms",
			query:   "rivers",
			wantIDs: []string{"osm-waterways"},
		},
		{
			name:    "case insensitive",
			query:   "HOSPITAL",
			wantIDs: []string{"osm-amenities"},
		},
		{
			name:    "no match",
			query:   "bathymetry",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := osm.Search(context.Background(), tt.query, 10)
			require.NoError(t, err)

			var ids []string
			for _, d := range results {
				ids = append(ids, d.ID)
				assert.Equal(t, "osm", d.Source)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestOSMSearchEmptyQueryReturnsCatalogue(t *testing.T) {
	osm := NewOSM()

	results, err := osm.Search(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, results, len(osmCatalogue))
}

func TestOSMSearchHonorsLimit(t *testing.T) {
	osm := NewOSM()

	results, err := osm.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestOSMFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"elements": []map[string]any{
				{
					"type": "node",
					"id":   101,
					"lat":  35.68,
					"lon":  139.76,
					"tags": map[string]string{"amenity": "school"},
				},
				{
					"type": "way",
					"id":   202,
					"tags": map[string]string{"highway": "residential"},
					"geometry": []map[string]float64{
						{"lat": 35.0, "lon": 139.0},
						{"lat": 35.1, "lon": 139.1},
					},
				},
				{
					"type": "way",
					"id":   303,
					"tags": map[string]string{"building": "yes"},
					"geometry": []map[string]float64{
						{"lat": 35.0, "lon": 139.0},
						{"lat": 35.0, "lon": 139.1},
						{"lat": 35.1, "lon": 139.1},
						{"lat": 35.0, "lon": 139.0},
					},
				},
			},
		})
	}))
	defer server.Close()

	osm := NewOSM(WithOverpassURL(server.URL))
	extent := &models.MapExtent{XMin: 139.0, YMin: 35.0, XMax: 139.2, YMax: 35.2}

	result, err := osm.Fetch(context.Background(), "osm-buildings", extent)
	require.NoError(t, err)

	assert.Equal(t, "Buildings", result.Name)
	assert.Equal(t, "GeoJSON", result.Format)
	assert.Equal(t, 3, result.FeatureCount)

	// The bounding box renders as south,west,north,east.
	assert.Contains(t, gotQuery, `way["building"](35.000000,139.000000,35.200000,139.200000);`)

	var collection struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(result.GeoJSON, &collection))
	require.Len(t, collection.Features, 3)

	assert.Equal(t, "FeatureCollection", collection.Type)
	assert.Equal(t, "Point", collection.Features[0].Geometry.Type)
	assert.Equal(t, "school", collection.Features[0].Properties["amenity"])
	assert.Equal(t, "LineString", collection.Features[1].Geometry.Type)
	assert.Equal(t, "Polygon", collection.Features[2].Geometry.Type)
}

func TestOSMFetchErrors(t *testing.T) {
	t.Run("unknown dataset", func(t *testing.T) {
		osm := NewOSM()
		_, err := osm.Fetch(context.Background(), "osm-bathymetry", &models.MapExtent{})
		assert.ErrorContains(t, err, "unknown dataset")
	})

	t.Run("missing extent", func(t *testing.T) {
		osm := NewOSM()
		_, err := osm.Fetch(context.Background(), "osm-buildings", nil)
		assert.ErrorContains(t, err, "extent is required")
	})

	t.Run("overpass error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		osm := NewOSM(WithOverpassURL(server.URL))
		_, err := osm.Fetch(context.Background(), "osm-roads", &models.MapExtent{XMax: 1, YMax: 1})
		assert.ErrorContains(t, err, "status 429")
	})
}

func TestRegistrySearchMergesSources(t *testing.T) {
	a := &stubSource{name: "a", datasets: []Dataset{{ID: "a-1", Source: "a"}, {ID: "a-2", Source: "a"}}}
	b := &stubSource{name: "b", datasets: []Dataset{{ID: "b-1", Source: "b"}}}
	failing := &stubSource{name: "broken", err: assert.AnError}

	registry := NewRegistry(a, failing, b)

	results := registry.Search(context.Background(), "anything", 10)
	require.Len(t, results, 3)
	assert.Equal(t, "a-1", results[0].ID)
	assert.Equal(t, "b-1", results[2].ID)
}

func TestRegistrySearchLimit(t *testing.T) {
	a := &stubSource{name: "a", datasets: []Dataset{{ID: "a-1"}, {ID: "a-2"}, {ID: "a-3"}}}

	registry := NewRegistry(a)

	results := registry.Search(context.Background(), "", 2)
	assert.Len(t, results, 2)
}

func TestRegistryFetchUnknownSource(t *testing.T) {
	registry := NewRegistry(NewOSM())

	_, err := registry.Fetch(context.Background(), "nasa", "osm-buildings", nil)

	var unknown *UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nasa", unknown.Name)
}

type stubSource struct {
	name     string
	datasets []Dataset
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, _ string, limit int) ([]Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.datasets) > limit {
		return s.datasets[:limit], nil
	}
	return s.datasets, nil
}

func (s *stubSource) Fetch(_ context.Context, id string, _ *models.MapExtent) (*FetchResult, error) {
	return &FetchResult{Name: id}, nil
}
