package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ovms-community/ovms-bridge/core/metrics"
	"github.com/ovms-community/ovms-bridge/infra/homeassistant"
	"github.com/ovms-community/ovms-bridge/infra/mqtt"
)

type Config struct {
	MQTT          mqtt.Config          `json:"mqtt"`
	Topics        TopicsConfig         `json:"topics"`
	Discovery     DiscoveryConfig      `json:"discovery"`
	Metrics       metrics.Config       `json:"metrics"`
	HomeAssistant homeassistant.Config `json:"homeassistant"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. OVMS_MQTT__PASSWORD.
	if err := k.Load(env.Provider("OVMS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ovms_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Topics.SetDefaults()
	cfg.Discovery.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.HomeAssistant.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Topics.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
