package config

import (
	"embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recallery/recallery-backend/internal/mastery"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"github.com/recallery/recallery-backend/internal/session"
	"github.com/recallery/recallery-backend/internal/srs"
)

const tuningPathEnv = "TUNING_YAML"

//go:embed tuning.yaml
var defaultTuningFS embed.FS

// Tuning bundles every algorithm parameter set. Attaching them here, rather
// than as package-level constants, lets deployments retune without rebuilds
// and lets tests exercise alternate tunings without global mutation.
type Tuning struct {
	SRS     srs.Params     `yaml:"srs"`
	Scoring session.Tuning `yaml:"scoring"`
	Session session.Config `yaml:"session"`
	Mastery mastery.Config `yaml:"mastery"`
}

func Default() Tuning {
	return Tuning{
		SRS:     srs.DefaultParams(),
		Scoring: session.DefaultTuning(),
		Session: session.DefaultConfig(),
		Mastery: mastery.DefaultConfig(),
	}
}

// Load returns the effective tuning: compiled-in defaults, overlaid with the
// embedded tuning.yaml, overlaid with the file TUNING_YAML points at (when
// set). A broken override file logs a warning and falls back rather than
// failing startup.
func Load(logg *logger.Logger) Tuning {
	t := Default()

	if raw, err := defaultTuningFS.ReadFile("tuning.yaml"); err == nil {
		if err := yaml.Unmarshal(raw, &t); err != nil && logg != nil {
			logg.Warn("embedded tuning.yaml is invalid, using compiled defaults", "error", err)
		}
	}

	path := strings.TrimSpace(os.Getenv(tuningPathEnv))
	if path == "" {
		return t
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if logg != nil {
			logg.Warn("tuning override unreadable, using defaults", "path", path, "error", err)
		}
		return t
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		if logg != nil {
			logg.Warn("tuning override invalid, using defaults", "path", path, "error", err)
		}
		return Default()
	}
	return t
}
