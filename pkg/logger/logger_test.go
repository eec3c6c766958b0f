package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ConsoleFormatSurvivesLevelField(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{
		Level:  "debug",
		Format: "console",
		Output: &buf,
	})

	// A caller field named "level" must not shadow the event level,
	// which the console writer needs intact to render the line.
	require.NotPanics(t, func() {
		Info("Creating new category", map[string]interface{}{
			"level": 1,
			"name":  "Tools",
		})
	})

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "field_level=1")
	assert.Contains(t, out, "name=Tools")
}

func TestLogger_JSONFormatNamespacesReservedKeys(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	Warn("colliding fields", map[string]interface{}{
		"level":   2,
		"message": "shadowed",
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"field_level":2`)
	assert.Contains(t, out, `"field_message":"shadowed"`)
	assert.Equal(t, 1, strings.Count(out, `"level":`))
}

func TestLogger_PlainFieldsPassThrough(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	Info("category created", map[string]interface{}{
		"category_id":    uint(7),
		"category_level": 2,
	})

	out := buf.String()
	assert.Contains(t, out, `"category_id":7`)
	assert.Contains(t, out, `"category_level":2`)
	assert.NotContains(t, out, "field_category_level")
}
