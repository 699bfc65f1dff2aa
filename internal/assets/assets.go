// Package assets maps a resolved platform, architecture and release version to
// the remote archive that has to be downloaded.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/tanq16/godotfetch/internal/platform"
	"github.com/tanq16/godotfetch/internal/utils"
	"gopkg.in/yaml.v3"
)

//go:embed godot.yaml
var defaultManifest []byte

// AssetMap is Platform -> Architecture -> archive file name.
type AssetMap map[platform.Platform]map[platform.Architecture]string

type Manifest struct {
	BaseURL string   `yaml:"base_url"`
	Files   AssetMap `yaml:"files"`
}

// Default returns the manifest compiled into the binary.
func Default() Manifest {
	m, err := Parse(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("embedded asset manifest is invalid: %v", err))
	}
	return m
}

// Load reads a manifest from a YAML file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("error reading asset manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("error parsing asset manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) Validate() error {
	if m.BaseURL == "" {
		return fmt.Errorf("asset manifest has no base_url")
	}
	if len(m.Files) == 0 {
		return fmt.Errorf("asset manifest has no files")
	}
	for p, archs := range m.Files {
		if !p.Valid() {
			return fmt.Errorf("asset manifest lists unknown platform %q", p)
		}
		for a, name := range archs {
			if !a.Valid() {
				return fmt.Errorf("asset manifest lists unknown architecture %q for %s", a, p)
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("asset manifest has an empty file name for %s/%s", p, a)
			}
		}
	}
	return nil
}

// Locate returns baseURL/releaseVersion/filename for the given target.
func (m Manifest) Locate(p platform.Platform, a platform.Architecture, releaseVersion string) (string, error) {
	archs, ok := m.Files[p]
	if !ok {
		return "", &utils.UnsupportedPlatformError{Platform: p.String(), Supported: m.Platforms()}
	}
	fileName, ok := archs[a]
	if !ok {
		return "", &utils.UnsupportedArchitectureError{
			Architecture: a.String(),
			Platform:     p.String(),
			Supported:    m.Architectures(p),
		}
	}
	return strings.TrimSuffix(m.BaseURL, "/") + "/" + releaseVersion + "/" + fileName, nil
}

// Platforms lists the platforms present in the manifest, sorted.
func (m Manifest) Platforms() []string {
	out := make([]string, 0, len(m.Files))
	for p := range m.Files {
		out = append(out, p.String())
	}
	slices.Sort(out)
	return out
}

// Architectures lists the architectures present for p, sorted.
func (m Manifest) Architectures(p platform.Platform) []string {
	out := make([]string, 0, len(m.Files[p]))
	for a := range m.Files[p] {
		out = append(out, a.String())
	}
	slices.Sort(out)
	return out
}

// WithBaseURL returns a copy of m that downloads from baseURL instead.
func (m Manifest) WithBaseURL(baseURL string) Manifest {
	if baseURL != "" {
		m.BaseURL = baseURL
	}
	return m
}
