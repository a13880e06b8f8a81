// Package manifest loads a package manifest into the publish metadata
// envelope (model.NewCrate).
//
// Two formats are accepted, selected by file extension:
//   - TOML (Crate.toml), parsed with github.com/pelletier/go-toml/v2
//   - JSON (crate.json), which may contain comments and trailing commas;
//     github.com/tidwall/jsonc strips them before encoding/json parses it
//
// The JSON form uses the registry wire names directly, so the output of
// `cratectl read-manifest` can be fed back as a manifest.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/cratectl/internal/model"
)

// Candidate manifest file names, in lookup order.
var candidateNames = []string{"Crate.toml", "crate.json"}

// tomlManifest mirrors the TOML manifest layout.
type tomlManifest struct {
	Package      tomlPackage         `toml:"package"`
	Dependencies map[string]any      `toml:"dependencies"`
	Features     map[string][]string `toml:"features"`
}

type tomlPackage struct {
	Name          string   `toml:"name"`
	Version       string   `toml:"version"`
	Authors       []string `toml:"authors"`
	Description   string   `toml:"description"`
	Documentation string   `toml:"documentation"`
	Homepage      string   `toml:"homepage"`
	Readme        string   `toml:"readme"`
	Keywords      []string `toml:"keywords"`
	License       string   `toml:"license"`
	Repository    string   `toml:"repository"`
}

// tomlDependency is the table form of a dependency.
type tomlDependency struct {
	Version         string   `toml:"version"`
	Optional        bool     `toml:"optional"`
	DefaultFeatures *bool    `toml:"default-features"`
	Features        []string `toml:"features"`
	Target          string   `toml:"target"`
}

// Find returns the first manifest found in dir.
func Find(dir string) (string, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("could not find %s in %s", strings.Join(candidateNames, " or "), dir)
}

// Load reads and validates the manifest at path.
func Load(path string) (*model.NewCrate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var krate *model.NewCrate
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		krate, err = ParseTOML(data)
	case ".json":
		krate, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q (expected .toml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := krate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return krate, nil
}

// ParseJSON parses a JSON (or JSONC) manifest in the wire layout.
func ParseJSON(data []byte) (*model.NewCrate, error) {
	var krate model.NewCrate
	if err := json.Unmarshal(jsonc.ToJSON(data), &krate); err != nil {
		return nil, err
	}
	krate.Normalize()
	return &krate, nil
}

// ParseTOML parses a TOML manifest.
func ParseTOML(data []byte) (*model.NewCrate, error) {
	var m tomlManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	deps := make([]model.NewCrateDependency, 0, len(m.Dependencies))
	for name, raw := range m.Dependencies {
		dep, err := parseDependency(name, raw)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	p := m.Package
	krate := &model.NewCrate{
		Name:          p.Name,
		Vers:          p.Version,
		Deps:          deps,
		Features:      m.Features,
		Authors:       p.Authors,
		Description:   model.StringPtr(p.Description),
		Documentation: model.StringPtr(p.Documentation),
		Homepage:      model.StringPtr(p.Homepage),
		Readme:        model.StringPtr(p.Readme),
		Keywords:      p.Keywords,
		License:       model.StringPtr(p.License),
		Repository:    model.StringPtr(p.Repository),
	}
	krate.Normalize()
	return krate, nil
}

// parseDependency accepts both `name = "1.0"` and
// `name = { version = "1.0", optional = true, ... }`.
func parseDependency(name string, raw any) (model.NewCrateDependency, error) {
	dep := model.NewCrateDependency{Name: name, DefaultFeatures: true}

	switch v := raw.(type) {
	case string:
		dep.VersionReq = v
	case map[string]any:
		// Round-trip through TOML to decode the table into its typed form.
		data, err := toml.Marshal(v)
		if err != nil {
			return dep, fmt.Errorf("dependency %q: %w", name, err)
		}
		var table tomlDependency
		if err := toml.Unmarshal(data, &table); err != nil {
			return dep, fmt.Errorf("dependency %q: %w", name, err)
		}
		dep.VersionReq = table.Version
		dep.Optional = table.Optional
		if table.DefaultFeatures != nil {
			dep.DefaultFeatures = *table.DefaultFeatures
		}
		dep.Features = table.Features
		dep.Target = model.StringPtr(table.Target)
	default:
		return dep, fmt.Errorf("dependency %q: expected a version string or a table, got %T", name, raw)
	}
	return dep, nil
}
