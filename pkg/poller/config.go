package poller

import (
	"os"
	"time"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"github.com/trafikinfo-se/trafikinfo/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	FilterModeCounty     = "county"
	FilterModeCoordinate = "coordinate"

	SortModeRelevance = "relevance"
	SortModeNearest   = "nearest"
	SortModeNewest    = "newest"

	// CountyAll selects every county in county filter mode.
	CountyAll = "all"
)

type Config struct {
	Instance string `yaml:"instance"`

	ScanInterval time.Duration `yaml:"scan_interval"`
	MaxItems     int           `yaml:"max_items"`

	FilterMode string   `yaml:"filter_mode"`
	Counties   []string `yaml:"counties"`
	Latitude   float64  `yaml:"latitude"`
	Longitude  float64  `yaml:"longitude"`
	RadiusKm   float64  `yaml:"radius_km"`
	Roads      []string `yaml:"roads"`

	SortMode string `yaml:"sort_mode"`

	MessageTypes []string `yaml:"message_types"`
}

func defaultConfig() Config {
	var messageTypes []string
	for _, messageType := range traffic.AllMessageTypes {
		messageTypes = append(messageTypes, string(messageType))
	}

	return Config{
		Instance: "default",

		ScanInterval: 10 * time.Minute,
		MaxItems:     25,

		FilterMode: FilterModeCounty,
		Counties:   []string{CountyAll},
		RadiusKm:   25.0,

		SortMode: SortModeRelevance,

		MessageTypes: messageTypes,
	}
}

// LoadConfig builds the poller configuration from defaults, an optional YAML
// file pointed at by TRAFIKINFO_CONFIG, and environment overrides.
func LoadConfig() (Config, error) {
	config := defaultConfig()

	env := util.GetEnvironmentVariables()

	if configPath := env["TRAFIKINFO_CONFIG"]; configPath != "" {
		configBytes, err := os.ReadFile(configPath)
		if err != nil {
			return config, err
		}

		if err := yaml.Unmarshal(configBytes, &config); err != nil {
			return config, err
		}
	}

	if env["TRAFIKINFO_INSTANCE"] != "" {
		config.Instance = env["TRAFIKINFO_INSTANCE"]
	}

	if env["TRAFIKINFO_SCAN_INTERVAL"] != "" {
		if parsed, err := time.ParseDuration(env["TRAFIKINFO_SCAN_INTERVAL"]); err == nil {
			config.ScanInterval = parsed
		}
	}

	config.normalize()

	return config, nil
}

func (config *Config) normalize() {
	if config.ScanInterval < time.Minute {
		config.ScanInterval = time.Minute
	}

	if config.MaxItems < 0 {
		config.MaxItems = 0
	}

	if config.FilterMode != FilterModeCounty && config.FilterMode != FilterModeCoordinate {
		config.FilterMode = FilterModeCounty
	}

	if config.FilterMode == FilterModeCounty && len(config.Counties) == 0 {
		config.Counties = []string{CountyAll}
	}

	if config.SortMode != SortModeRelevance && config.SortMode != SortModeNearest && config.SortMode != SortModeNewest {
		config.SortMode = SortModeRelevance
	}

	if len(config.MessageTypes) == 0 {
		for _, messageType := range traffic.AllMessageTypes {
			config.MessageTypes = append(config.MessageTypes, string(messageType))
		}
	}
}

// EnabledMessageTypes resolves the configured category names.
func (config *Config) EnabledMessageTypes() []traffic.MessageType {
	var enabled []traffic.MessageType

	for _, messageType := range traffic.AllMessageTypes {
		if util.ContainsString(config.MessageTypes, string(messageType)) {
			enabled = append(enabled, messageType)
		}
	}

	return enabled
}
