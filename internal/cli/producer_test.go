package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileProducerSnapshot(t *testing.T) {
	doc := `{
		"project": {"name": "Flood Study", "path": "C:/gis/flood.aprx", "spatialReference": "EPSG:4326"},
		"layers": [
			{
				"name": "rivers",
				"type": "FeatureLayer",
				"geometryType": "Polyline",
				"featureCount": 120,
				"spatialReference": "EPSG:4326",
				"isVisible": true,
				"isEditable": false,
				"fields": [
					{"name": "OBJECTID", "type": "OID"},
					{"name": "name", "type": "String"},
					{"name": "SHAPE", "type": "Geometry"},
					{"name": "flow_rate", "type": "Double"}
				]
			}
		],
		"activeLayer": "rivers"
	}`

	path := filepath.Join(t.TempDir(), "context.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := NewFileProducer(path).Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Flood Study", got.Project.Name)
	assert.Equal(t, "rivers", got.ActiveLayer)
	require.Len(t, got.Layers, 1)

	// Normalization strips the reserved fields.
	fields := got.Layers[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Name)
	assert.Equal(t, "flow_rate", fields[1].Name)

	assert.False(t, got.Timestamp.IsZero())
}

func TestFileProducerErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileProducer("/nonexistent/context.json").Snapshot(context.Background())
		assert.ErrorContains(t, err, "failed to read context file")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "context.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := NewFileProducer(path).Snapshot(context.Background())
		assert.ErrorContains(t, err, "failed to parse context file")
	})
}

func TestEmptyProducer(t *testing.T) {
	doc, err := emptyProducer{}.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}
