package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the optional per-site config file,
// looked up in the current directory and then the home directory.
const ConfigFileName = ".sitegrep"

// FindConfigFile returns the path of the first config file found, or ""
// when none exists. An explicit path, when given, is the only candidate;
// otherwise the current directory wins over the home directory so
// project-local overrides take precedence.
func FindConfigFile(explicitPath string) string {
	var candidates []string
	if explicitPath != "" {
		candidates = []string{explicitPath}
	} else {
		candidates = []string{ConfigFileName}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ConfigFileName))
		}
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadConfigFile reads and parses a .sitegrep YAML file. A missing or
// unreadable file is an error; callers that treat the file as optional
// should check FindConfigFile first.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if f.Sites == nil {
		f.Sites = make(map[string]SiteConfig)
	}
	return &f, nil
}
