package poller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TRAFIKINFO_CONFIG", "")
	t.Setenv("TRAFIKINFO_INSTANCE", "")
	t.Setenv("TRAFIKINFO_SCAN_INTERVAL", "")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "default", config.Instance)
	assert.Equal(t, 10*time.Minute, config.ScanInterval)
	assert.Equal(t, 25, config.MaxItems)
	assert.Equal(t, FilterModeCounty, config.FilterMode)
	assert.Equal(t, []string{CountyAll}, config.Counties)
	assert.Equal(t, 25.0, config.RadiusKm)
	assert.Equal(t, SortModeRelevance, config.SortMode)
	assert.Len(t, config.EnabledMessageTypes(), len(traffic.AllMessageTypes))
}

func TestLoadConfigFromYAMLAndEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "trafikinfo.yaml")
	configYAML := `
instance: vastkusten
filter_mode: coordinate
latitude: 57.7089
longitude: 11.9746
radius_km: 50
roads: ["E6"]
sort_mode: nearest
message_types: ["Olycka", "Hinder"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	t.Setenv("TRAFIKINFO_CONFIG", configPath)
	t.Setenv("TRAFIKINFO_SCAN_INTERVAL", "5m")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "vastkusten", config.Instance)
	assert.Equal(t, FilterModeCoordinate, config.FilterMode)
	assert.Equal(t, 50.0, config.RadiusKm)
	assert.Equal(t, SortModeNearest, config.SortMode)
	assert.Equal(t, 5*time.Minute, config.ScanInterval)

	enabled := config.EnabledMessageTypes()
	assert.ElementsMatch(t, []traffic.MessageType{
		traffic.MessageTypeAccident,
		traffic.MessageTypeObstacle,
	}, enabled)
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	config := Config{
		ScanInterval: time.Second,
		MaxItems:     -5,
		FilterMode:   "postcode",
		SortMode:     "loudest",
	}

	config.normalize()

	assert.Equal(t, time.Minute, config.ScanInterval)
	assert.Equal(t, 0, config.MaxItems)
	assert.Equal(t, FilterModeCounty, config.FilterMode)
	assert.Equal(t, []string{CountyAll}, config.Counties)
	assert.Equal(t, SortModeRelevance, config.SortMode)
	assert.NotEmpty(t, config.MessageTypes)
}
