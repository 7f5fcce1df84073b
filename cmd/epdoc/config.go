package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config is the optional .epdoc.yaml, looked up in the working directory
// and then the user config directory.
type config struct {
	// SchemaDirs are extra schema search locations, consulted after the
	// bundled schemas.
	SchemaDirs []string `yaml:"schema_dirs"`
}

func loadConfig() (config, error) {
	var c config
	paths := []string{".epdoc.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "epdoc", "config.yaml"))
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, err
		}
		return c, nil
	}
	return c, nil
}
