package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/document-status-dashboard/internal/core/status"
)

// LoadRules reads marker tokens from a YAML file. An empty path or a missing
// file yields the defaults; unset keys fall back individually.
func LoadRules(path string) (status.Rules, error) {
	if path == "" {
		return status.DefaultRules().WithDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return status.DefaultRules().WithDefaults(), nil
	}
	if err != nil {
		return status.Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}

	var rules status.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return status.Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	rules = rules.WithDefaults()
	if rules.PlausibleMin > rules.PlausibleMax {
		return status.Rules{}, fmt.Errorf("parse rules %s: plausible_min exceeds plausible_max", path)
	}
	return rules, nil
}
