// Package file loads the featsweep configuration from a TOML file.
// Defaults cover the stock pyslam layout; the file overrides them.
package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/logger"
)

// SweepConfig is the full featsweep configuration.
type SweepConfig struct {
	Sweep    SweepSection   `toml:"sweep"`
	Program  ProgramSection `toml:"program"`
	Datasets []DatasetEntry `toml:"datasets"`
	Store    StoreSection   `toml:"store"`
}

// SweepSection controls the trial enumeration and failure policy.
type SweepSection struct {
	// Detectors to sweep, in order.
	Detectors []string `toml:"detectors"`

	// Retries is how many extra attempts a failed trial gets.
	Retries int `toml:"retries"`

	// RetryDelaySeconds is the pause between attempts.
	RetryDelaySeconds int `toml:"retry_delay_seconds"`

	// TrialTimeoutMinutes bounds one attempt of the external program.
	TrialTimeoutMinutes int `toml:"trial_timeout_minutes"`

	// ResultsDir is where the program drops its outputs and where
	// harvested artifacts stay.
	ResultsDir string `toml:"results_dir"`
}

// ProgramSection describes how to invoke the external program.
type ProgramSection struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Workdir string   `toml:"workdir"`

	// TrackerConfig is the file holding the feature-tracker name key.
	TrackerConfig string `toml:"tracker_config"`

	// DatasetConfig is the file holding the dataset base-path key.
	// May be the same file as TrackerConfig.
	DatasetConfig string `toml:"dataset_config"`
}

// DatasetEntry binds one variant token to its dataset path. Entries are
// ordered: the sweep visits them in file order.
type DatasetEntry struct {
	Variant string `toml:"variant"`
	Path    string `toml:"path"`
}

// StoreSection controls trial history persistence. Enabled is a pointer
// so an absent key defaults to enabled.
type StoreSection struct {
	Enabled *bool  `toml:"enabled"`
	DataDir string `toml:"data_dir"`
}

// IsEnabled reports whether trial history should be persisted.
func (s StoreSection) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Default returns the stock configuration for a pyslam checkout in the
// working directory.
func Default() SweepConfig {
	detectors := make([]string, 0, len(domain.DefaultDetectors()))
	for _, d := range domain.DefaultDetectors() {
		detectors = append(detectors, string(d))
	}

	return SweepConfig{
		Sweep: SweepSection{
			Detectors:           detectors,
			Retries:             0,
			RetryDelaySeconds:   5,
			TrialTimeoutMinutes: 30,
			ResultsDir:          "pyslam/results",
		},
		Program: ProgramSection{
			Command:       "python3",
			Args:          []string{"main_vo.py"},
			Workdir:       "pyslam",
			TrackerConfig: "pyslam/config.yaml",
			DatasetConfig: "pyslam/config.yaml",
		},
		Datasets: []DatasetEntry{
			{Variant: "clean", Path: "/data/kitti/sequences_clean"},
			{Variant: "rain", Path: "/data/kitti/sequences_rain"},
			{Variant: "fog", Path: "/data/kitti/sequences_fog"},
		},
	}
}

// Load reads the configuration file at path. Absent sections and keys
// fall back to defaults; a missing file yields the defaults outright.
func Load(path string) (SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no config at %s, using defaults", path)
			return Default(), nil
		}
		return SweepConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg SweepConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return SweepConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills in anything the file left unset.
func (c *SweepConfig) applyDefaults() {
	def := Default()

	if len(c.Sweep.Detectors) == 0 {
		c.Sweep.Detectors = def.Sweep.Detectors
	}
	if c.Sweep.RetryDelaySeconds <= 0 {
		c.Sweep.RetryDelaySeconds = def.Sweep.RetryDelaySeconds
	}
	if c.Sweep.TrialTimeoutMinutes <= 0 {
		c.Sweep.TrialTimeoutMinutes = def.Sweep.TrialTimeoutMinutes
	}
	if c.Sweep.ResultsDir == "" {
		c.Sweep.ResultsDir = def.Sweep.ResultsDir
	}

	if c.Program.Command == "" {
		c.Program.Command = def.Program.Command
		if c.Program.Args == nil {
			c.Program.Args = def.Program.Args
		}
	}
	if c.Program.Workdir == "" {
		c.Program.Workdir = def.Program.Workdir
	}
	if c.Program.TrackerConfig == "" {
		c.Program.TrackerConfig = def.Program.TrackerConfig
	}
	if c.Program.DatasetConfig == "" {
		// Both keys often live in the same file.
		c.Program.DatasetConfig = c.Program.TrackerConfig
	}

	if len(c.Datasets) == 0 {
		c.Datasets = def.Datasets
	}
}

// Plan builds the validated sweep plan from the configuration.
func (c SweepConfig) Plan() (domain.SweepPlan, error) {
	detectors := make([]domain.Detector, 0, len(c.Sweep.Detectors))
	for _, d := range c.Sweep.Detectors {
		detectors = append(detectors, domain.Detector(d))
	}

	datasets := make([]domain.Dataset, 0, len(c.Datasets))
	for _, entry := range c.Datasets {
		datasets = append(datasets, domain.Dataset{
			Variant:  domain.DatasetVariant(entry.Variant),
			BasePath: entry.Path,
		})
	}

	return domain.NewSweepPlan(detectors, datasets)
}

// RetryPolicy returns the configured retry policy.
func (c SweepConfig) RetryPolicy() domain.RetryPolicy {
	return domain.RetryPolicy{
		Retries: c.Sweep.Retries,
		Delay:   time.Duration(c.Sweep.RetryDelaySeconds) * time.Second,
	}
}

// TrialTimeout returns the configured per-attempt timeout.
func (c SweepConfig) TrialTimeout() time.Duration {
	return time.Duration(c.Sweep.TrialTimeoutMinutes) * time.Minute
}
