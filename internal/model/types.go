package model

import (
	"fmt"
	"regexp"
	"sort"
)

// NewCrate is the metadata envelope sent to the registry together with a
// package archive on publish. The JSON field names are the registry's wire
// names and must not change.
//
// A NewCrate is immutable once built; the registry client serializes it
// exactly once per publish.
type NewCrate struct {
	// Name is the package name as registered.
	Name string `json:"name"`

	// Vers is the semantic version being published.
	Vers string `json:"vers"`

	// Deps lists the package's dependencies.
	Deps []NewCrateDependency `json:"deps"`

	// Features maps a feature name to the features/dependencies it enables.
	Features map[string][]string `json:"features"`

	// Authors lists the package authors, usually "Name <email>".
	Authors []string `json:"authors"`

	// Optional descriptive fields. They encode as null when absent.
	Description   *string `json:"description"`
	Documentation *string `json:"documentation"`
	Homepage      *string `json:"homepage"`
	Readme        *string `json:"readme"`

	// Keywords are search keywords for the registry index.
	Keywords []string `json:"keywords"`

	License    *string `json:"license"`
	Repository *string `json:"repository"`
}

// NewCrateDependency describes one dependency inside a NewCrate.
type NewCrateDependency struct {
	// Optional marks dependencies that are only enabled by a feature.
	Optional bool `json:"optional"`

	// DefaultFeatures is false when the dependency's default features are
	// disabled.
	DefaultFeatures bool `json:"default_features"`

	// Name is the dependency's package name.
	Name string `json:"name"`

	// Features lists extra features enabled on the dependency.
	Features []string `json:"features"`

	// VersionReq is the version requirement, e.g. "^1.2".
	VersionReq string `json:"version_req"`

	// Target restricts the dependency to a platform, or is nil.
	Target *string `json:"target"`
}

// nameRegex validates package names: ASCII alphanumerics, '-' and '_',
// starting with a letter.
var nameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateName checks if the given name is a valid package name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("package name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must start with a letter and contain only alphanumerics, '-' or '_'", name)
	}
	return nil
}

// Validate checks the fields the registry rejects outright. It is run on
// metadata decoded from a stdin payload and on loaded manifests.
func (c *NewCrate) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Vers == "" {
		return fmt.Errorf("package %q: version must not be empty", c.Name)
	}
	for _, dep := range c.Deps {
		if err := ValidateName(dep.Name); err != nil {
			return fmt.Errorf("package %q: dependency: %w", c.Name, err)
		}
		if dep.VersionReq == "" {
			return fmt.Errorf("package %q: dependency %q has no version requirement", c.Name, dep.Name)
		}
	}
	return nil
}

// Normalize replaces nil collections with empty ones so the envelope
// encodes as [] / {} rather than null, and sorts dependencies by name for
// deterministic output.
func (c *NewCrate) Normalize() {
	if c.Deps == nil {
		c.Deps = []NewCrateDependency{}
	}
	for i := range c.Deps {
		if c.Deps[i].Features == nil {
			c.Deps[i].Features = []string{}
		}
	}
	sort.SliceStable(c.Deps, func(i, j int) bool {
		return c.Deps[i].Name < c.Deps[j].Name
	})
	if c.Features == nil {
		c.Features = map[string][]string{}
	}
	if c.Authors == nil {
		c.Authors = []string{}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
}

// String returns "name v<version>" for status lines.
func (c *NewCrate) String() string {
	return fmt.Sprintf("%s v%s", c.Name, c.Vers)
}

// StringPtr returns a pointer to s, or nil when s is empty. It is used to
// fill the optional fields of NewCrate.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
