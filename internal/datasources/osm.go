package datasources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cartoflow/gis-copilot/internal/models"
)

const (
	// DefaultOverpassURL is the public Overpass API interpreter endpoint.
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	overpassTimeout = 30 * time.Second
)

// osmCatalogue is the curated set of queries the OSM source offers. Each
// entry carries an Overpass QL selector rendered against the fetch extent.
var osmCatalogue = []osmDataset{
	{
		Dataset: Dataset{
			ID:          "osm-buildings",
			Name:        "Buildings",
			Description: "Building footprints from OpenStreetMap",
			Format:      "GeoJSON",
			Keywords:    []string{"building", "buildings", "footprint", "structure"},
		},
		selector: `way["building"]`,
	},
	{
		Dataset: Dataset{
			ID:          "osm-roads",
			Name:        "Roads",
			Description: "Road network (highways) from OpenStreetMap",
			Format:      "GeoJSON",
			Keywords:    []string{"road", "roads", "highway", "street", "streets"},
		},
		selector: `way["highway"]`,
	},
	{
		Dataset: Dataset{
			ID:          "osm-waterways",
			Name:        "Waterways",
			Description: "Rivers, streams and canals from OpenStreetMap",
			Format:      "GeoJSON",
			Keywords:    []string{"water", "waterway", "river", "rivers", "stream", "canal"},
		},
		selector: `way["waterway"]`,
	},
	{
		Dataset: Dataset{
			ID:          "osm-landuse",
			Name:        "Land use",
			Description: "Land use polygons from OpenStreetMap",
			Format:      "GeoJSON",
			Keywords:    []string{"landuse", "land", "zoning", "parks", "forest", "residential"},
		},
		selector: `way["landuse"]`,
	},
	{
		Dataset: Dataset{
			ID:          "osm-amenities",
			Name:        "Amenities",
			Description: "Points of interest (schools, hospitals, shops) from OpenStreetMap",
			Format:      "GeoJSON",
			Keywords:    []string{"amenity", "amenities", "poi", "school", "hospital", "shop"},
		},
		selector: `node["amenity"]`,
	},
}

type osmDataset struct {
	Dataset
	selector string
}

// OSM serves curated OpenStreetMap extracts through the Overpass API.
type OSM struct {
	overpassURL string
	httpClient  *http.Client
}

// OSMOption configures the OSM source.
type OSMOption func(*OSM)

// WithOverpassURL overrides the Overpass interpreter endpoint.
func WithOverpassURL(u string) OSMOption {
	return func(o *OSM) {
		if u != "" {
			o.overpassURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) OSMOption {
	return func(o *OSM) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// NewOSM creates the OpenStreetMap source.
func NewOSM(opts ...OSMOption) *OSM {
	o := &OSM{
		overpassURL: DefaultOverpassURL,
		httpClient:  &http.Client{Timeout: overpassTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the source identifier used in dataset listings.
func (o *OSM) Name() string {
	return "osm"
}

// Search matches the curated catalogue against the query keywords.
func (o *OSM) Search(_ context.Context, query string, limit int) ([]Dataset, error) {
	if limit <= 0 {
		limit = len(osmCatalogue)
	}

	terms := strings.Fields(strings.ToLower(query))
	var results []Dataset
	for _, entry := range osmCatalogue {
		if len(results) >= limit {
			break
		}
		if matchesKeywords(entry, terms) {
			d := entry.Dataset
			d.Source = o.Name()
			results = append(results, d)
		}
	}
	return results, nil
}

func matchesKeywords(entry osmDataset, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		for _, keyword := range entry.Keywords {
			if strings.Contains(keyword, term) || strings.Contains(term, keyword) {
				return true
			}
		}
		if strings.Contains(strings.ToLower(entry.Name), term) {
			return true
		}
	}
	return false
}

// Fetch runs the dataset's Overpass query bounded by the extent and converts
// the result to GeoJSON.
func (o *OSM) Fetch(ctx context.Context, id string, extent *models.MapExtent) (*FetchResult, error) {
	entry, ok := o.catalogueEntry(id)
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", id)
	}
	if extent == nil {
		return nil, fmt.Errorf("a map extent is required to fetch %q", id)
	}

	query := buildOverpassQuery(entry.selector, extent)

	body, err := o.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var response overpassResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode Overpass response: %w", err)
	}

	collection := featureCollection{Type: "FeatureCollection", Features: []geoFeature{}}
	for _, elem := range response.Elements {
		if feature, ok := elementToFeature(elem); ok {
			collection.Features = append(collection.Features, feature)
		}
	}

	geoJSON, err := json.Marshal(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	return &FetchResult{
		Name:         entry.Name,
		Format:       "GeoJSON",
		FeatureCount: len(collection.Features),
		GeoJSON:      geoJSON,
	}, nil
}

func (o *OSM) catalogueEntry(id string) (osmDataset, bool) {
	for _, entry := range osmCatalogue {
		if entry.ID == id {
			return entry, true
		}
	}
	return osmDataset{}, false
}

// buildOverpassQuery renders the Overpass QL for a selector bounded by the
// extent. Overpass bbox order is south,west,north,east.
func buildOverpassQuery(selector string, extent *models.MapExtent) string {
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", extent.YMin, extent.XMin, extent.YMax, extent.XMax)
	return fmt.Sprintf("[out:json][timeout:25];\n(\n  %s(%s);\n);\nout geom;", selector, bbox)
}

func (o *OSM) runQuery(ctx context.Context, query string) ([]byte, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Overpass API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Overpass API returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// elementToFeature converts one Overpass element to a GeoJSON feature.
// Nodes become points; ways become LineStrings, or Polygons when the
// geometry forms a closed ring.
func elementToFeature(elem overpassElement) (geoFeature, bool) {
	properties := make(map[string]any, len(elem.Tags)+2)
	for k, v := range elem.Tags {
		properties[k] = v
	}
	properties["osm_id"] = elem.ID
	properties["osm_type"] = elem.Type

	feature := geoFeature{Type: "Feature", Properties: properties}

	switch elem.Type {
	case "node":
		feature.Geometry = geoGeometry{
			Type:        "Point",
			Coordinates: []float64{elem.Lon, elem.Lat},
		}
		return feature, true

	case "way":
		if len(elem.Geometry) < 2 {
			return geoFeature{}, false
		}
		coords := make([][]float64, len(elem.Geometry))
		for i, pt := range elem.Geometry {
			coords[i] = []float64{pt.Lon, pt.Lat}
		}
		first, last := elem.Geometry[0], elem.Geometry[len(elem.Geometry)-1]
		if len(coords) >= 4 && first.Lat == last.Lat && first.Lon == last.Lon {
			feature.Geometry = geoGeometry{Type: "Polygon", Coordinates: [][][]float64{coords}}
		} else {
			feature.Geometry = geoGeometry{Type: "LineString", Coordinates: coords}
		}
		return feature, true
	}

	// Relations need multipolygon assembly; they are skipped.
	return geoFeature{}, false
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string          `json:"type"`
	ID       int64           `json:"id"`
	Lat      float64         `json:"lat,omitempty"`
	Lon      float64         `json:"lon,omitempty"`
	Tags     map[string]any  `json:"tags,omitempty"`
	Geometry []overpassPoint `json:"geometry,omitempty"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type featureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string         `json:"type"`
	Geometry   geoGeometry    `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}
