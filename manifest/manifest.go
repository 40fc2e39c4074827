// Package manifest loads and validates the YAML description of a
// package's prebuilt binaries.
//
// A manifest names the package, the release that carries its binaries,
// and optional checksum pins:
//
//	package: demo-plugin
//	version: 1.2.3
//	license: MIT OR Apache-2.0
//	source:
//	  store: github
//	  owner: acme
//	  repo: demo-plugin
//	localRoot: packages/demo-plugin/rust
//	checksums:
//	  libdemo_plugin_linux_x64.so: 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
package manifest

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/github/go-spdx/v2/spdxexp"
	"gopkg.in/yaml.v3"

	"github.com/native-pkgs/prebuilts"
)

// Manifest describes where a package's prebuilt binaries come from.
type Manifest struct {
	Package   string            `yaml:"package"`
	Version   string            `yaml:"version"`
	License   string            `yaml:"license,omitempty"`
	Source    Source            `yaml:"source"`
	LocalRoot string            `yaml:"localRoot,omitempty"`
	Checksums map[string]string `yaml:"checksums,omitempty"`
}

// Source identifies the release store location within a manifest.
type Source struct {
	Store string `yaml:"store,omitempty"`
	Host  string `yaml:"host,omitempty"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for completeness. The version is
// canonicalized in place: a leading "v" is accepted in the file but
// never stored. Store types are not checked here; an unknown store
// surfaces when a resolver is created for it.
func (m *Manifest) Validate() error {
	if m.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if m.Source.Owner == "" {
		return fmt.Errorf("source owner is required")
	}
	if m.Source.Repo == "" {
		return fmt.Errorf("source repo is required")
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", m.Version, err)
	}
	m.Version = v.String()

	if m.License != "" {
		valid, invalid := spdxexp.ValidateLicenses([]string{m.License})
		if !valid {
			return fmt.Errorf("invalid SPDX license expression: %s", strings.Join(invalid, ", "))
		}
	}

	for name, sum := range m.Checksums {
		if len(sum) != 64 {
			return fmt.Errorf("checksum for %s must be 64 hex characters, got %d", name, len(sum))
		}
		if _, err := hex.DecodeString(sum); err != nil {
			return fmt.Errorf("checksum for %s is not valid hex: %w", name, err)
		}
	}

	return nil
}

// ResolverSource converts the manifest source to a resolver source.
// The store type defaults to "github" when the manifest names none.
func (m *Manifest) ResolverSource() prebuilts.Source {
	store := m.Source.Store
	if store == "" {
		store = prebuilts.DefaultStore
	}
	return prebuilts.Source{
		Store:   store,
		Host:    m.Source.Host,
		Owner:   m.Source.Owner,
		Repo:    m.Source.Repo,
		Version: m.Version,
	}
}

// Target builds the resolution target for one platform of this package.
func (m *Manifest) Target(os prebuilts.OS, arch string) prebuilts.Target {
	return prebuilts.Target{
		Package: m.Package,
		OS:      os,
		Arch:    arch,
	}
}

// ResolverOptions returns the resolver options the manifest carries:
// the local build root and any checksum pins.
func (m *Manifest) ResolverOptions() []prebuilts.ResolverOption {
	var opts []prebuilts.ResolverOption
	if m.LocalRoot != "" {
		opts = append(opts, prebuilts.WithLocalRoot(m.LocalRoot))
	}
	if len(m.Checksums) > 0 {
		opts = append(opts, prebuilts.WithChecksums(m.Checksums))
	}
	return opts
}
