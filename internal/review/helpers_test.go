package review

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt/mocks"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
)

const (
	testOwner    = "bazelbuild"
	testRepo     = "bazel-central-registry"
	stableBranch = "main"
	botLogin     = "bazel-io"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func initLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))
}

func newMockAPI(t *testing.T) *mocks.MockAPI {
	t.Helper()
	initLogger(t)
	return mocks.NewMockAPI(gomock.NewController(t))
}

func maintainer(handle string, id int64) *registry.Maintainer {
	return &registry.Maintainer{
		Name:         handle,
		Email:        handle + "@example.com",
		GitHub:       handle,
		GitHubUserID: id,
	}
}

func metadataJSON(t *testing.T, maintainers ...*registry.Maintainer) []byte {
	t.Helper()

	data, err := json.Marshal(&registry.Metadata{
		Maintainers: maintainers,
		Versions:    []string{"1.0.0"},
	})
	require.NoError(t, err)

	return data
}

func mockMetadata(t *testing.T, clt *mocks.MockAPI, module string, maintainers ...*registry.Maintainer) *gomock.Call {
	return clt.EXPECT().
		FileContent(gomock.Any(), testOwner, testRepo, registry.MetadataPath(module), stableBranch).
		Return(metadataJSON(t, maintainers...), nil)
}

func mockMetadataNotFound(clt *mocks.MockAPI, module string) *gomock.Call {
	return clt.EXPECT().
		FileContent(gomock.Any(), testOwner, testRepo, registry.MetadataPath(module), stableBranch).
		Return(nil, fmt.Errorf("%s: %w", registry.MetadataPath(module), githubclt.ErrNotFound))
}

func mockUserID(clt *mocks.MockAPI, login string, id int64) *gomock.Call {
	return clt.EXPECT().UserID(gomock.Any(), login).Return(id, nil)
}

// mockPullRequest configures the mock to return pr for every PullRequest()
// call.
func mockPullRequest(clt *mocks.MockAPI, pr *githubclt.PullRequest) *gomock.Call {
	return clt.EXPECT().
		PullRequest(gomock.Any(), testOwner, testRepo, pr.Number).
		Return(pr, nil).
		AnyTimes()
}

// mockFiles configures the mock to return files for the first
// ListPullRequestFiles page.
func mockFiles(clt *mocks.MockAPI, number int, files ...string) *gomock.Call {
	return clt.EXPECT().
		ListPullRequestFiles(gomock.Any(), testOwner, testRepo, number, 1, FilesPageSize).
		Return(files, nil)
}

func commit(sha string, parents int, ts time.Time) *githubclt.Commit {
	return &githubclt.Commit{
		SHA:         sha,
		ParentCount: parents,
		AuthoredAt:  ts,
		CommittedAt: ts,
	}
}

func review(id int64, reviewer string, state githubclt.ReviewState, submittedAt time.Time) *githubclt.Review {
	return &githubclt.Review{
		ID:          id,
		Reviewer:    reviewer,
		State:       state,
		SubmittedAt: submittedAt,
	}
}

func moduleFiles(module, version string, cnt int) []string {
	result := make([]string, 0, cnt)
	for i := 0; i < cnt; i++ {
		result = append(result, fmt.Sprintf("modules/%s/%s/patches/%03d.patch", module, version, i))
	}
	return result
}
