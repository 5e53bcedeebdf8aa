package review

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

func TestResolveMaintainers(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadata(t, clt, "rules_foo", maintainer("alice", 1), maintainer("bob", 2))
	mockMetadata(t, clt, "rules_bar", maintainer("bob", 2))
	mockUserID(clt, "alice", 1)
	mockUserID(clt, "bob", 2).Times(1)

	res, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_foo", "rules_bar"), false,
	)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Orphans.Len())
	assert.Equal(t, []string{"rules_foo"}, res.Maintainers["alice"].Sorted())
	assert.Equal(t, []string{"rules_bar", "rules_foo"}, res.Maintainers["bob"].Sorted())
	assert.Equal(t, []string{"alice", "bob"}, res.Maintainers.MaintainersOf("rules_foo"))
}

func TestResolveMissingMetadataIsOrphan(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadataNotFound(clt, "rules_new")

	res, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_new"), false,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"rules_new"}, res.Orphans.Sorted())
	assert.Empty(t, res.Maintainers)
}

func TestResolveMaintainersWithoutHandleAreIgnored(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadata(t, clt, "rules_bar", &registry.Maintainer{Name: "Dave", Email: "dave@example.com"})

	res, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_bar"), false,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"rules_bar"}, res.Orphans.Sorted())
	assert.Empty(t, res.Maintainers)
}

func TestResolveExcludeDoNotNotify(t *testing.T) {
	clt := newMockAPI(t)

	quiet := maintainer("quiet", 3)
	quiet.DoNotNotify = true

	mockMetadata(t, clt, "rules_foo", maintainer("alice", 1), quiet).Times(2)
	mockUserID(clt, "alice", 1).Times(2)
	mockUserID(clt, "quiet", 3).Times(1)

	resolver := NewMaintainerResolver(clt, stableBranch)

	res, err := resolver.Resolve(context.Background(), testOwner, testRepo, set.From("rules_foo"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Maintainers.MaintainersOf("rules_foo"))

	res, err = resolver.Resolve(context.Background(), testOwner, testRepo, set.From("rules_foo"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "quiet"}, res.Maintainers.MaintainersOf("rules_foo"))
}

func TestResolveOnlyDoNotNotifyMaintainersIsOrphanWhenExcluding(t *testing.T) {
	clt := newMockAPI(t)

	quiet := maintainer("quiet", 3)
	quiet.DoNotNotify = true
	mockMetadata(t, clt, "rules_foo", quiet)

	res, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_foo"), true,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"rules_foo"}, res.Orphans.Sorted())
}

func TestResolveIdentityMismatchFails(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadata(t, clt, "rules_foo", maintainer("mallory", 66))
	mockUserID(clt, "mallory", 4711)

	res, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_foo"), false,
	)
	require.Error(t, err)
	assert.Nil(t, res)

	var idErr *IdentityVerificationError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, "mallory", idErr.Handle)
	assert.Equal(t, int64(66), idErr.ExpectedID)
	assert.Equal(t, int64(4711), idErr.ActualID)
}

func TestResolveRelistedHandleWithDifferentIDFails(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadata(t, clt, "rules_a", maintainer("alice", 1))
	mockMetadata(t, clt, "rules_b", maintainer("alice", 2))
	mockUserID(clt, "alice", 1).Times(1)

	_, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_a", "rules_b"), false,
	)

	var idErr *IdentityVerificationError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, "rules_b", idErr.Module)
}

func TestResolveUserLookupFailureFails(t *testing.T) {
	clt := newMockAPI(t)

	mockMetadata(t, clt, "rules_foo", maintainer("ghost", 5))
	clt.EXPECT().UserID(gomock.Any(), "ghost").Return(int64(0), githubclt.ErrNotFound)

	_, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_foo"), false,
	)

	var idErr *IdentityVerificationError
	require.ErrorAs(t, err, &idErr)
	assert.ErrorIs(t, err, githubclt.ErrNotFound)
}

func TestResolveMetadataFetchErrorFails(t *testing.T) {
	clt := newMockAPI(t)

	fetchErr := errors.New("connection reset")
	clt.EXPECT().
		FileContent(gomock.Any(), testOwner, testRepo, registry.MetadataPath("rules_foo"), stableBranch).
		Return(nil, fetchErr)

	_, err := NewMaintainerResolver(clt, stableBranch).Resolve(
		context.Background(), testOwner, testRepo, set.From("rules_foo"), false,
	)
	assert.ErrorIs(t, err, fetchErr)
}

func TestGroupsAreIndependentOfInsertionOrder(t *testing.T) {
	m1 := MaintainerMap{}
	m1.add("alice", "rules_a")
	m1.add("alice", "rules_b")
	m1.add("bob", "rules_b")
	m1.add("bob", "rules_a")
	m1.add("carol", "rules_c")

	m2 := MaintainerMap{}
	m2.add("carol", "rules_c")
	m2.add("bob", "rules_a")
	m2.add("alice", "rules_b")
	m2.add("bob", "rules_b")
	m2.add("alice", "rules_a")

	expected := []*MaintainerGroup{
		{Modules: []string{"rules_a", "rules_b"}, Maintainers: []string{"alice", "bob"}},
		{Modules: []string{"rules_c"}, Maintainers: []string{"carol"}},
	}

	assert.Equal(t, expected, m1.Groups())
	assert.Equal(t, expected, m2.Groups())
}

func TestGroupsDoNotMergeSubsets(t *testing.T) {
	m := MaintainerMap{}
	m.add("alice", "rules_a")
	m.add("bob", "rules_a")
	m.add("bob", "rules_b")

	groups := m.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"alice"}, groups[0].Maintainers)
	assert.Equal(t, []string{"bob"}, groups[1].Maintainers)
}
