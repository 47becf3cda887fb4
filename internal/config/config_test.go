package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func TestParseRoutingMap(t *testing.T) {
	parsed, err := parseRoutingMap("potholes:roads, garbage:sanitation")
	require.NoError(t, err)
	assert.Equal(t, map[domain.ComplaintCategory]string{
		domain.CategoryPotholes: "roads",
		domain.CategoryGarbage:  "sanitation",
	}, parsed)
}

func TestParseRoutingMapEmpty(t *testing.T) {
	parsed, err := parseRoutingMap("  ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseRoutingMapRejectsMalformedPairs(t *testing.T) {
	for _, raw := range []string{"potholes", "potholes:", ":roads", "a:b,,"} {
		_, err := parseRoutingMap(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestSplitCSVNormalizes(t *testing.T) {
	assert.Equal(t, []string{"png", "jpg"}, splitCSV(" PNG , jpg ,"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "complaint-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, int64(5242880), cfg.Uploads.MaxBytes)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif"}, cfg.Uploads.AllowedExtensions)
	assert.Equal(t, 60, cfg.Stats.CacheTTLSeconds)
	assert.Equal(t, "general", cfg.Routing.DefaultDepartment)
}
