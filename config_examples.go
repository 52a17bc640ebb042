package main

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ensureExampleFiles regenerates data/config/examples/config.toml.example
// from the built-in defaults on every boot, so it always lists every key.
func ensureExampleFiles(dataDir string) {
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	examplesDir := filepath.Join(dataDir, "config", "examples")
	if err := os.MkdirAll(examplesDir, 0o755); err != nil {
		logger.Warn("create examples directory failed", "dir", examplesDir, "error", err)
		return
	}
	path := filepath.Join(examplesDir, "config.toml.example")
	data := exampleConfigBytes()
	if len(data) == 0 {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("write example config failed", "path", path, "error", err)
	}
}

const exampleHeader = "# Generated base config example (copy to config.toml and edit as needed)\n\n"

func exampleConfigBytes() []byte {
	data, err := toml.Marshal(buildFileConfig(defaultConfig()))
	if err != nil {
		logger.Warn("encode config example failed", "error", err)
		return nil
	}
	return append([]byte(exampleHeader), data...)
}
