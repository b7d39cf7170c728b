package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTrackerYAML = `FeatureTrackerConfig:
  name: ORB
  num_features: 2000
DATASET:
  KITTI:
    base_path: /data/kitti/sequences
`

// writeSweepSetup writes a sweep.toml plus the external YAML config the
// trials rewrite, returning the config path and the results directory.
func writeSweepSetup(t *testing.T, shellScript string, detectors string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(testTrackerYAML), 0644))

	resultsDir := filepath.Join(dir, "results")
	require.NoError(t, os.MkdirAll(resultsDir, 0755))

	toml := fmt.Sprintf(`
[sweep]
detectors = [%s]
retries = 0
retry_delay_seconds = 0
trial_timeout_minutes = 1
results_dir = %q

[program]
command = "sh"
args = ["-c", %q]
workdir = %q
tracker_config = %q
dataset_config = %q

[[datasets]]
variant = "clean"
path = %q

[store]
enabled = false
`, detectors, resultsDir, shellScript, dir, yamlPath, yamlPath,
		filepath.Join(dir, "kitti_clean"))

	configPath := filepath.Join(dir, "sweep.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(toml), 0600))
	return configPath, resultsDir
}

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based test, not supported on windows")
	}
}

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
}

func TestRunCmd_DryRunPrintsPlan(t *testing.T) {
	configPath, _ := writeSweepSetup(t, "exit 0", `"ORB", "SIFT"`)

	out, err := execRoot(t, "run", "--config", configPath, "--dry-run=true")

	assert.NoError(t, err)
	assert.Contains(t, out, "Planned trials (2):")
	assert.Contains(t, out, "ORB on clean")
	assert.Contains(t, out, "SIFT on clean")
}

func TestRunCmd_SweepPasses(t *testing.T) {
	requireUnix(t)
	configPath, _ := writeSweepSetup(t, "exit 0", `"ORB"`)

	out, err := execRoot(t, "run", "--config", configPath, "--dry-run=false")

	assert.NoError(t, err)
	assert.Contains(t, out, "Detector: ORB")
	assert.Contains(t, out, "[1/1] ORB on clean dataset...")
	assert.Contains(t, out, "Sweep complete: 1 passed, 0 failed of 1 trials")

	// The external YAML config was rewritten for the trial.
	data, readErr := os.ReadFile(filepath.Join(filepath.Dir(configPath), "config.yaml"))
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "kitti_clean")
}

func TestRunCmd_FailedTrialDoesNotAbortSweep(t *testing.T) {
	requireUnix(t)
	configPath, _ := writeSweepSetup(t, "exit 3", `"ORB", "SIFT"`)

	out, err := execRoot(t, "run", "--config", configPath, "--dry-run=false")

	assert.NoError(t, err)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Sweep complete: 0 passed, 2 failed of 2 trials")
}

func TestRunCmd_InvalidDetector(t *testing.T) {
	configPath, _ := writeSweepSetup(t, "exit 0", `"not a detector"`)

	_, err := execRoot(t, "run", "--config", configPath, "--dry-run=true")

	assert.ErrorContains(t, err, "invalid sweep plan")
}
