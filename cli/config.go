package cli

// This file contains the optional .contendgo.yaml config file. Flags
// always win over config values.

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".contendgo.yaml"

type config struct {
	Suite         string        `yaml:"suite"`
	Dispatch      string        `yaml:"dispatch"`
	Timeout       time.Duration `yaml:"timeout"`
	MemoryLimitMB int           `yaml:"memory_limit_mb"`
	Jobs          int           `yaml:"jobs"`
	ScratchRoot   string        `yaml:"scratch_root"`
}

// loadConfig reads the config file at path, or the default file in the
// working directory when path is empty. A missing default file is not an
// error; a missing explicit file is.
func loadConfig(path string) (config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return config{}, nil
		}
		return config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
