package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_SafeCode(t *testing.T) {
	v := New()

	code := `import arcpy

count = arcpy.management.GetCount("schools")
arcpy.AddMessage(f"Schools: {count}")
`
	result := v.Validate(code)

	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Errors)
}

func TestValidator_DangerousPatterns(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"file_deletion", `import os
os.remove("/data/parcels.shp")`},
		{"tree_deletion", `import shutil
shutil.rmtree("/data")`},
		{"subprocess", `import subprocess
subprocess.run(["rm", "-rf", "/"])`},
		{"os_system", `import os
os.system("format c:")`},
		{"eval", `eval("os.remove('x')")`},
		{"exec", `exec(payload)`},
		{"dunder_import", `__import__("os").system("ls")`},
		{"globals", `globals()["__builtins__"]`},
		{"network_requests", `import requests
requests.get("http://evil.example")`},
		{"sql_piggyback", `arcpy.management.SelectLayerByAttribute("a", "NEW_SELECTION", "1=1; DROP TABLE parcels")`},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.code)
			assert.False(t, result.Valid, "expected %s to be rejected", tt.name)
			assert.NotEmpty(t, result.Errors)
			assert.Less(t, result.Score, ValidThreshold)
		})
	}
}

func TestValidator_ImportAllowlist(t *testing.T) {
	v := New()

	t.Run("allowed_modules", func(t *testing.T) {
		code := `import arcpy
import os.path
import math
from datetime import datetime
from qgis.core import QgsProject
import processing
`
		result := v.Validate(code)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("disallowed_module", func(t *testing.T) {
		result := v.Validate("import pickle\n")
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], `"pickle"`)
		assert.Equal(t, 70, result.Score)
		assert.False(t, result.Valid)
	})
}

func TestValidator_FileWriteIsWarningOnly(t *testing.T) {
	v := New()

	code := `import arcpy
with open("report.txt", "w") as f:
    f.write("done")
`
	result := v.Validate(code)

	assert.True(t, result.Valid)
	assert.Equal(t, 90, result.Score)
	assert.NotEmpty(t, result.Warnings)
	assert.Empty(t, result.Errors)
}

func TestValidator_EditOperationsWarn(t *testing.T) {
	v := New()

	code := `import arcpy
with arcpy.da.UpdateCursor("parcels", ["zone"]) as cursor:
    for row in cursor:
        pass
`
	result := v.Validate(code)

	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.Score)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "edits layer data")
}

func TestValidator_ScoreFloorsAtZero(t *testing.T) {
	v := New()

	code := `import subprocess
import requests
eval("x")
exec("y")
os.system("z")
os.remove("w")
`
	result := v.Validate(code)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Valid)
}

func TestValidator_Deterministic(t *testing.T) {
	v := New()
	code := `import pickle
eval("x")
open("f", "w")
`
	first := v.Validate(code)
	second := v.Validate(code)
	assert.Equal(t, first, second)
}
