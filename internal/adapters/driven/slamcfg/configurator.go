// Package slamcfg rewrites the external visual-odometry program's YAML
// configuration files. Files are parsed, modified and re-serialised via
// the YAML node tree, so comments and key order survive the rewrite.
package slamcfg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/logger"
)

// Key the detector token is bound to in the tracker configuration.
const (
	trackerSection = "FeatureTrackerConfig"
	trackerNameKey = "name"
	basePathKey    = "base_path"

	// basePathMarker identifies which base_path entry is the dataset
	// selector: its current value always points somewhere under a
	// kitti tree.
	basePathMarker = "kitti"
)

// Ensure Configurator implements the interface.
var _ driven.SlamConfigurator = (*Configurator)(nil)

// Configurator mutates the two external configuration files in place.
type Configurator struct {
	mu          sync.Mutex
	trackerFile string
	datasetFile string

	// lastPath is the base path written by the previous trial. Once a
	// sweep rewrites the entry its value may no longer contain the kitti
	// marker, so the previous value has to match as well.
	lastPath string
}

// New creates a configurator over the tracker config (file holding the
// feature-tracker name) and the dataset config (file holding the
// dataset base path).
func New(trackerFile, datasetFile string) *Configurator {
	return &Configurator{
		trackerFile: trackerFile,
		datasetFile: datasetFile,
	}
}

// SetDetector binds the feature-tracker name key to the detector token.
func (c *Configurator) SetDetector(ctx context.Context, detector domain.Detector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return c.rewrite(c.trackerFile, func(root *yaml.Node) error {
		value := findTrackerName(root)
		if value == nil {
			return fmt.Errorf("%w: %s.%s in %s", domain.ErrConfigKeyMissing, trackerSection, trackerNameKey, c.trackerFile)
		}
		setScalar(value, detector.String())
		logger.Debug("%s: %s.%s = %s", c.trackerFile, trackerSection, trackerNameKey, detector)
		return nil
	})
}

// SetDatasetPath binds every kitti base-path key to the given path.
func (c *Configurator) SetDatasetPath(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.rewrite(c.datasetFile, func(root *yaml.Node) error {
		replaced := replaceBasePaths(root, path, c.lastPath)
		if replaced == 0 {
			return fmt.Errorf("%w: no %s entry matching %q in %s", domain.ErrConfigKeyMissing, basePathKey, basePathMarker, c.datasetFile)
		}
		logger.Debug("%s: %d %s entries = %s", c.datasetFile, replaced, basePathKey, path)
		return nil
	})
	if err != nil {
		return err
	}
	c.lastPath = path
	return nil
}

// rewrite loads a YAML file, applies mutate to its node tree and writes
// it back with the original file mode.
func (c *Configurator) rewrite(path string, mutate func(root *yaml.Node) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("%w: %s is empty", domain.ErrConfigKeyMissing, path)
	}

	if err := mutate(doc.Content[0]); err != nil {
		return err
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Content[0]); err != nil {
		return fmt.Errorf("serialise %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("serialise %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(buf.String()), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// findTrackerName locates the value node for the detector name. Both
// layouts seen in the wild are accepted: a flat "FeatureTrackerConfig.name"
// key at top level, or a nested FeatureTrackerConfig mapping with a name key.
func findTrackerName(root *yaml.Node) *yaml.Node {
	if v := mappingValue(root, trackerSection+"."+trackerNameKey); v != nil {
		return v
	}
	if section := mappingValue(root, trackerSection); section != nil {
		return mappingValue(section, trackerNameKey)
	}
	return nil
}

// replaceBasePaths walks the tree and rewrites every base_path scalar
// whose current value contains the kitti marker or equals the previously
// written path. Returns the number of entries rewritten.
func replaceBasePaths(node *yaml.Node, path, lastPath string) int {
	replaced := 0
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Value == basePathKey && value.Kind == yaml.ScalarNode && matchesBasePath(value.Value, lastPath) {
				setScalar(value, path)
				replaced++
				continue
			}
			replaced += replaceBasePaths(value, path, lastPath)
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			replaced += replaceBasePaths(child, path, lastPath)
		}
	}
	return replaced
}

func matchesBasePath(current, lastPath string) bool {
	if strings.Contains(current, basePathMarker) {
		return true
	}
	return lastPath != "" && current == lastPath
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// setScalar overwrites a node with a plain string scalar value.
func setScalar(node *yaml.Node, value string) {
	node.Kind = yaml.ScalarNode
	node.Tag = "!!str"
	node.Value = value
	node.Style = 0
	node.Content = nil
}
