package models

import (
	"strings"
	"time"
)

// MaxLayerFields caps how many fields a layer descriptor carries on the wire.
const MaxLayerFields = 10

// maxDataSourceLen drops unwieldy connection strings from snapshots.
const maxDataSourceLen = 500

// Context is the project snapshot a host sends with each generation request.
type Context struct {
	Project     ProjectInfo `json:"project"`
	Layers      []LayerInfo `json:"layers"`
	ActiveLayer string      `json:"activeLayer,omitempty"`
	MapExtent   *MapExtent  `json:"mapExtent,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ProjectInfo contains project metadata
type ProjectInfo struct {
	Name             string `json:"name"`
	Path             string `json:"path"`
	SpatialReference string `json:"spatialReference"`
	DefaultDatabase  string `json:"defaultDatabase,omitempty"`
}

// LayerInfo contains detailed layer metadata.
// FeatureCount is -1 when the host could not determine it.
type LayerInfo struct {
	Name             string       `json:"name"`
	Type             string       `json:"type"`
	GeometryType     string       `json:"geometryType,omitempty"`
	FeatureCount     int64        `json:"featureCount"`
	DataSource       string       `json:"dataSource,omitempty"`
	Fields           []FieldInfo  `json:"fields,omitempty"`
	SpatialReference string       `json:"spatialReference"`
	Extent           *LayerExtent `json:"extent,omitempty"`
	IsVisible        bool         `json:"isVisible"`
	IsEditable       bool         `json:"isEditable"`
}

// FieldInfo describes a field in a layer
type FieldInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Alias    string `json:"alias,omitempty"`
	Length   int    `json:"length,omitempty"`
	Nullable bool   `json:"nullable"`
}

// LayerExtent defines spatial bounds of a layer
type LayerExtent struct {
	XMin float64 `json:"xMin"`
	YMin float64 `json:"yMin"`
	XMax float64 `json:"xMax"`
	YMax float64 `json:"yMax"`
}

// MapExtent defines the current map view extent
type MapExtent struct {
	XMin  float64 `json:"xMin"`
	YMin  float64 `json:"yMin"`
	XMax  float64 `json:"xMax"`
	YMax  float64 `json:"yMax"`
	Scale float64 `json:"scale,omitempty"`
}

// reservedFieldNames are system-maintained fields the hosts manage themselves.
// They carry no meaning for code generation and are stripped from snapshots.
var reservedFieldNames = map[string]bool{
	"OBJECTID":     true,
	"SHAPE":        true,
	"SHAPE_LENGTH": true,
	"SHAPE_AREA":   true,
	"GLOBALID":     true,
}

// Normalize applies the snapshot invariants in place: reserved field names are
// removed, each layer keeps at most the first MaxLayerFields fields, oversized
// data source strings are dropped, and a zero timestamp is set to now.
// Producers call this before a document leaves the host.
func (c *Context) Normalize() {
	for i := range c.Layers {
		layer := &c.Layers[i]

		if len(layer.Fields) > 0 {
			kept := layer.Fields[:0]
			for _, f := range layer.Fields {
				if reservedFieldNames[strings.ToUpper(f.Name)] {
					continue
				}
				kept = append(kept, f)
			}
			if len(kept) > MaxLayerFields {
				kept = kept[:MaxLayerFields]
			}
			layer.Fields = kept
		}

		if len(layer.DataSource) >= maxDataSourceLen {
			layer.DataSource = ""
		}
	}

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
}

// LayerByName returns the layer with the given name, or nil.
func (c *Context) LayerByName(name string) *LayerInfo {
	for i := range c.Layers {
		if c.Layers[i].Name == name {
			return &c.Layers[i]
		}
	}
	return nil
}
