package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModuleVersionPath(t *testing.T) {
	tcs := []struct {
		path   string
		result ModuleVersion
		ok     bool
	}{
		{path: "modules/rules_cc/0.0.9/MODULE.bazel", result: ModuleVersion{Module: "rules_cc", Version: "0.0.9"}, ok: true},
		{path: "modules/rules_cc/0.0.9/patches/fix.patch", result: ModuleVersion{Module: "rules_cc", Version: "0.0.9"}, ok: true},
		{path: "modules/rules_cc/metadata.json"},
		{path: "modules/rules_cc"},
		{path: "tools/bcr_validation.py"},
		{path: "docs/modules/rules_cc/1.0/README.md"},
	}

	for _, tc := range tcs {
		t.Run(tc.path, func(t *testing.T) {
			mv, ok := ParseModuleVersionPath(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.result, mv)
		})
	}
}

func TestParseMetadataPath(t *testing.T) {
	module, ok := ParseMetadataPath("modules/rules_go/metadata.json")
	assert.True(t, ok)
	assert.Equal(t, "rules_go", module)

	_, ok = ParseMetadataPath("modules/rules_go/0.1/metadata.json")
	assert.False(t, ok)
}

func TestModuleVersionString(t *testing.T) {
	assert.Equal(t, "rules_cc@1.0", ModuleVersion{Module: "rules_cc", Version: "1.0"}.String())
	assert.Equal(t, "rules_cc", ModuleVersion{Module: "rules_cc"}.String())
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata([]byte(`{
  "homepage": "https://github.com/bazelbuild/rules_foo",
  "maintainers": [
    {"name": "Alice", "email": "alice@example.com", "github": "alice", "github_user_id": 1},
    {"name": "Bob", "github": "bob", "github_user_id": 2, "do_not_notify": true},
    {"name": "Dave", "email": "dave@example.com"}
  ],
  "versions": ["1.0.0", "1.1.0", "2.0.0"],
  "yanked_versions": {"1.1.0": "broken"}
}`))
	require.NoError(t, err)

	require.Len(t, md.Maintainers, 3)
	assert.Equal(t, "alice", md.Maintainers[0].GitHub)
	assert.Equal(t, int64(1), md.Maintainers[0].GitHubUserID)
	assert.True(t, md.Maintainers[1].DoNotNotify)
	assert.Empty(t, md.Maintainers[2].GitHub)
	assert.True(t, md.IsYanked("1.1.0"))
	assert.False(t, md.IsYanked("2.0.0"))
}

func TestParseMetadataInvalid(t *testing.T) {
	_, err := ParseMetadata([]byte(`{"maintainers": `))
	assert.Error(t, err)
}

func TestPreviousVersion(t *testing.T) {
	md := Metadata{Versions: []string{"1.0.0", "1.1.0", "2.0.0"}}

	prev, err := md.PreviousVersion("2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", prev)

	prev, err = md.PreviousVersion("1.0.0")
	require.NoError(t, err)
	assert.Empty(t, prev)

	_, err = md.PreviousVersion("3.0.0")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}
