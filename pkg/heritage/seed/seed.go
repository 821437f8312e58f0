// Package seed provides the sample content loaded into empty collections.
package seed

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/tendant/heritage-content/pkg/heritage"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Default returns a fresh copy of the built-in fixtures
func Default() (*heritage.Fixtures, error) {
	return Parse(defaultFixtures)
}

// Parse decodes fixtures from YAML
func Parse(data []byte) (*heritage.Fixtures, error) {
	var f heritage.Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed fixtures: %w", err)
	}
	return &f, nil
}

// Load reads fixtures from r
func Load(r io.Reader) (*heritage.Fixtures, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed fixtures: %w", err)
	}
	return Parse(data)
}

// LoadFile reads fixtures from path. An empty path selects the built-in set.
func LoadFile(path string) (*heritage.Fixtures, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
