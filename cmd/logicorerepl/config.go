package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// replConfig holds REPL defaults loaded from a small YAML file, the
// config-loading idiom cognicore-io-korel and theRebelliousNerd-codenerd
// both use for CLI defaults.
type replConfig struct {
	TraceDepthCap int    `yaml:"trace_depth_cap"`
	ResultLimit   int    `yaml:"result_limit"`
	SessionFile   string `yaml:"session_file"`
}

func defaultConfig() replConfig {
	return replConfig{
		TraceDepthCap: 50,
		ResultLimit:   0,
		SessionFile:   "logicore.session.json",
	}
}

// loadConfig reads path if it exists, overlaying its fields onto the
// defaults; a missing file is not an error.
func loadConfig(path string) (replConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
