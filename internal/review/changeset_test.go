package review

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

func TestResolveCollectsModulesOfAllPages(t *testing.T) {
	clt := newMockAPI(t)

	page1 := append(moduleFiles("rules_foo", "1.1.0", 98),
		"modules/rules_foo/metadata.json",
		"modules/rules_bar/2.0/MODULE.bazel",
	)
	page2 := []string{
		"modules/rules_baz/metadata.json",
		"tools/bcr_validation.py",
		"modules/rules_bar/2.0/source.json",
	}

	mockPullRequest(clt, &githubclt.PullRequest{Number: 1, HeadSHA: "head"})
	clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 1, 1, FilesPageSize).Return(page1, nil)
	clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 1, 2, FilesPageSize).Return(page2, nil)

	cs, err := NewChangeSetResolver(clt).Resolve(context.Background(), testOwner, testRepo, 1)
	require.NoError(t, err)

	assert.Equal(t, "head", cs.HeadSHA)
	assert.Equal(t, []registry.ModuleVersion{
		{Module: "rules_bar", Version: "2.0"},
		{Module: "rules_foo", Version: "1.1.0"},
	}, cs.ModuleVersions)
	assert.Equal(t, []string{"rules_bar", "rules_foo"}, cs.Modules.Sorted())
	assert.Equal(t, []string{"rules_baz", "rules_foo"}, cs.MetadataChanged.Sorted())
	assert.Equal(t, []string{"rules_baz"}, cs.MetadataOnly().Sorted())
}

func TestResolveStopsAtFullLastPageFollowedByEmptyPage(t *testing.T) {
	clt := newMockAPI(t)

	mockPullRequest(clt, &githubclt.PullRequest{Number: 1, HeadSHA: "head"})
	clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 1, 1, FilesPageSize).
		Return(moduleFiles("rules_foo", "1.0", FilesPageSize), nil)
	clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 1, 2, FilesPageSize).
		Return(nil, nil)

	cs, err := NewChangeSetResolver(clt).ResolveAt(context.Background(), testOwner, testRepo, 1, "head")
	require.NoError(t, err)
	assert.Equal(t, []string{"rules_foo"}, cs.Modules.Sorted())
}

func TestResolveAbortsWhenHeadChangesBetweenPages(t *testing.T) {
	clt := newMockAPI(t)

	gomock.InOrder(
		clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 7, 1, FilesPageSize).
			Return(moduleFiles("rules_foo", "1.0", FilesPageSize), nil),
		clt.EXPECT().PullRequest(gomock.Any(), testOwner, testRepo, 7).
			Return(&githubclt.PullRequest{Number: 7, HeadSHA: "head"}, nil),
		clt.EXPECT().ListPullRequestFiles(gomock.Any(), testOwner, testRepo, 7, 2, FilesPageSize).
			Return(moduleFiles("rules_bar", "1.0", FilesPageSize), nil),
		clt.EXPECT().PullRequest(gomock.Any(), testOwner, testRepo, 7).
			Return(&githubclt.PullRequest{Number: 7, HeadSHA: "new-head"}, nil),
	)

	cs, err := NewChangeSetResolver(clt).ResolveAt(context.Background(), testOwner, testRepo, 7, "head")
	require.Error(t, err)
	assert.Nil(t, cs)

	var staleErr *StaleDataError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, "head", staleErr.ExpectedHeadSHA)
	assert.Equal(t, "new-head", staleErr.CurrentHeadSHA)
	assert.True(t, IsStale(err))
}

func TestResolveNoModules(t *testing.T) {
	clt := newMockAPI(t)

	mockPullRequest(clt, &githubclt.PullRequest{Number: 3, HeadSHA: "head"})
	mockFiles(clt, 3, "README.md", ".github/workflows/presubmit.yml")

	cs, err := NewChangeSetResolver(clt).ResolveAt(context.Background(), testOwner, testRepo, 3, "head")
	require.NoError(t, err)
	assert.Equal(t, 0, cs.Modules.Len())
	assert.Empty(t, cs.ModuleVersions)
}

func TestMetadataOnly(t *testing.T) {
	cs := ChangeSet{
		Modules:         set.From("a", "b"),
		MetadataChanged: set.From("b", "c"),
	}

	assert.Equal(t, []string{"c"}, cs.MetadataOnly().Sorted())
}
