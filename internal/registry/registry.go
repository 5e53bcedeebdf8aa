// Package registry provides the types and file layout of a module registry.
//
// A registry stores every version of a module in its own directory,
// modules/<name>/<version>/, and the module metadata in
// modules/<name>/metadata.json.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var ErrVersionNotFound = errors.New("version not found in metadata")

var (
	moduleVersionPathRe = regexp.MustCompile(`^modules/([^/]+)/([^/]+)/`)
	metadataPathRe      = regexp.MustCompile(`^modules/([^/]+)/metadata\.json`)
)

// ModuleVersion identifies a version of a module.
type ModuleVersion struct {
	Module  string
	Version string
}

func (m ModuleVersion) String() string {
	if m.Version == "" {
		return m.Module
	}
	return m.Module + "@" + m.Version
}

// Compare orders ModuleVersions by module name and version.
func (m ModuleVersion) Compare(o ModuleVersion) int {
	if c := strings.Compare(m.Module, o.Module); c != 0 {
		return c
	}
	return strings.Compare(m.Version, o.Version)
}

// ParseModuleVersionPath returns the module version a file in the registry
// belongs to.
// ok is false if the path is not inside a module version directory.
func ParseModuleVersionPath(path string) (mv ModuleVersion, ok bool) {
	matches := moduleVersionPathRe.FindStringSubmatch(path)
	if matches == nil {
		return ModuleVersion{}, false
	}

	return ModuleVersion{Module: matches[1], Version: matches[2]}, true
}

// ParseMetadataPath returns the module name if path is the metadata file of
// a module.
func ParseMetadataPath(path string) (module string, ok bool) {
	matches := metadataPathRe.FindStringSubmatch(path)
	if matches == nil {
		return "", false
	}

	return matches[1], true
}

// MetadataPath returns the path of the metadata file of a module.
func MetadataPath(module string) string {
	return fmt.Sprintf("modules/%s/metadata.json", module)
}

// ModuleVersionDir returns the directory containing the files of a module
// version.
func ModuleVersionDir(module, version string) string {
	return fmt.Sprintf("modules/%s/%s", module, version)
}

// Maintainer is a maintainer entry of a module metadata file.
type Maintainer struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	GitHub       string `json:"github,omitempty"`
	GitHubUserID int64  `json:"github_user_id,omitempty"`
	DoNotNotify  bool   `json:"do_not_notify,omitempty"`
}

// Metadata is the content of a module metadata.json file.
type Metadata struct {
	Homepage       string            `json:"homepage,omitempty"`
	Maintainers    []*Maintainer     `json:"maintainers"`
	Repository     []string          `json:"repository,omitempty"`
	Versions       []string          `json:"versions"`
	YankedVersions map[string]string `json:"yanked_versions,omitempty"`
}

// ParseMetadata parses the content of a metadata.json file.
func ParseMetadata(data []byte) (*Metadata, error) {
	var md Metadata

	if err := json.Unmarshal(data, &md); err != nil {
		return nil, err
	}

	return &md, nil
}

// PreviousVersion returns the version that is listed before version in
// Versions.
// Versions are expected to be in ascending order.
// If version is the first listed version, an empty string is returned.
// If version is not listed, ErrVersionNotFound is returned.
func (m *Metadata) PreviousVersion(version string) (string, error) {
	idx := slices.Index(m.Versions, version)
	if idx == -1 {
		return "", fmt.Errorf("%s: %w", version, ErrVersionNotFound)
	}

	if idx == 0 {
		return "", nil
	}

	return m.Versions[idx-1], nil
}

// IsYanked returns true if version is listed as yanked.
func (m *Metadata) IsYanked(version string) bool {
	_, exists := m.YankedVersions[version]
	return exists
}
