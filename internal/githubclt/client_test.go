package githubclt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v59/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/boterr"
)

const (
	testOwner = "bazelbuild"
	testRepo  = "bazel-central-registry"
)

// newTestClient returns a Client that sends all REST and GraphQL requests to
// a httptest server serving mux.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	restClt := github.NewClient(srv.Client())
	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	restClt.BaseURL = baseURL

	return &Client{
		restClt:    restClt,
		graphQLClt: githubv4.NewEnterpriseClient(srv.URL+"/graphql", srv.Client()),
		logger:     zap.L(),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestWrapRetryableErrorsGraphql(t *testing.T) {
	mux := http.NewServeMux()
	// is the same then in github.com/shurcooL/graphql/graphql.go do()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(503)
	})

	clt := newTestClient(t, mux)

	_, err := clt.HasMergedPullRequest(context.Background(), testOwner, testRepo, "alice")
	require.Error(t, err)

	var retryableErr *boterr.RetryableError
	assert.ErrorAs(t, err, &retryableErr)
}

func TestWrapRetryableErrorsGraphqlWithNonStatusErr(t *testing.T) {
	err := errors.New("error")
	wrappedErr := (&Client{}).wrapGraphQLRetryableErrors(err)
	assert.Equal(t, err, wrappedErr)
}

func TestHasMergedPullRequest(t *testing.T) {
	var query string

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &req))
		query, _ = req.Variables["query"].(string)

		writeJSON(t, w, map[string]any{
			"data": map[string]any{
				"search": map[string]any{"issueCount": 3},
			},
		})
	})

	clt := newTestClient(t, mux)

	merged, err := clt.HasMergedPullRequest(context.Background(), testOwner, testRepo, "alice")
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, "is:pr is:merged author:alice repo:bazelbuild/bazel-central-registry", query)
}

func TestRateLimitErrorIsRetryable(t *testing.T) {
	reset := time.Now().Add(time.Hour).Truncate(time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/alice", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		writeJSON(t, w, map[string]string{"message": "API rate limit exceeded"})
	})

	clt := newTestClient(t, mux)

	_, err := clt.UserID(context.Background(), "alice")
	require.Error(t, err)

	var retryableErr *boterr.RetryableError
	require.ErrorAs(t, err, &retryableErr)
	assert.True(t, retryableErr.After.Equal(reset), "retry after %s, expected %s", retryableErr.After, reset)
}

func TestServerErrorIsRetryable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/pulls/1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	clt := newTestClient(t, mux)

	_, err := clt.PullRequest(context.Background(), testOwner, testRepo, 1)
	require.Error(t, err)

	var retryableErr *boterr.RetryableError
	assert.ErrorAs(t, err, &retryableErr)
}

func TestPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/pulls/42", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"number": 42,
			"state":  "open",
			"draft":  true,
			"head":   map[string]any{"sha": "abc"},
			"user":   map[string]any{"login": "carol", "id": 7},
			"labels": []map[string]any{{"name": "presubmit-auto-run"}},
		})
	})

	clt := newTestClient(t, mux)

	pr, err := clt.PullRequest(context.Background(), testOwner, testRepo, 42)
	require.NoError(t, err)

	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "abc", pr.HeadSHA)
	assert.Equal(t, "carol", pr.Author)
	assert.Equal(t, int64(7), pr.AuthorID)
	assert.True(t, pr.Draft)
	assert.True(t, pr.HasLabel("presubmit-auto-run"))
	assert.False(t, pr.HasLabel("auto-merged"))
	assert.NotNil(t, pr.Raw)
}

func TestFileContent(t *testing.T) {
	const content = `{"versions": ["1.0"]}`

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/contents/modules/rules_foo/metadata.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))

		writeJSON(t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"path":     "modules/rules_foo/metadata.json",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})

	clt := newTestClient(t, mux)

	data, err := clt.FileContent(context.Background(), testOwner, testRepo, "modules/rules_foo/metadata.json", "main")
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFileContentNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/contents/modules/rules_foo/metadata.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"message": "Not Found"})
	})

	clt := newTestClient(t, mux)

	_, err := clt.FileContent(context.Background(), testOwner, testRepo, "modules/rules_foo/metadata.json", "main")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMergeRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/pulls/3/merge", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SHA         string `json:"sha"`
			MergeMethod string `json:"merge_method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc", req.SHA)
		assert.Equal(t, "squash", req.MergeMethod)

		w.WriteHeader(http.StatusMethodNotAllowed)
		writeJSON(t, w, map[string]string{"message": "Required status check \"ci\" is expected."})
	})

	clt := newTestClient(t, mux)

	err := clt.MergePullRequest(context.Background(), testOwner, testRepo, 3, "abc", "squash")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMergeRejected)
}

func TestListPullRequestCommitsFollowsPages(t *testing.T) {
	var srvURL string

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/pulls/5/commits", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/bazelbuild/bazel-central-registry/pulls/5/commits?page=2>; rel="next"`, srvURL))
			writeJSON(t, w, []map[string]any{{
				"sha":     "c1",
				"parents": []map[string]any{{"sha": "p1"}},
				"commit": map[string]any{
					"author":    map[string]any{"date": "2024-01-01T10:00:00Z"},
					"committer": map[string]any{"date": "2024-01-01T11:00:00Z"},
				},
			}})
			return
		}

		writeJSON(t, w, []map[string]any{{
			"sha":     "c2",
			"parents": []map[string]any{{"sha": "c1"}, {"sha": "main"}},
			"commit": map[string]any{
				"author":    map[string]any{"date": "2024-01-02T10:00:00Z"},
				"committer": map[string]any{"date": "2024-01-02T10:00:00Z"},
			},
		}})
	})

	clt := newTestClient(t, mux)
	srvURL = clt.restClt.BaseURL.String()
	srvURL = srvURL[:len(srvURL)-1]

	commits, err := clt.ListPullRequestCommits(context.Background(), testOwner, testRepo, 5)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "c1", commits[0].SHA)
	assert.Equal(t, 1, commits[0].ParentCount)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), commits[0].CommittedAt.UTC())
	assert.Equal(t, "c2", commits[1].SHA)
	assert.Equal(t, 2, commits[1].ParentCount)
}

func TestCountWorkflowRuns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/actions/workflows/99/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "queued", r.URL.Query().Get("status"))
		writeJSON(t, w, map[string]any{"total_count": 4, "workflow_runs": []any{}})
	})

	clt := newTestClient(t, mux)

	cnt, err := clt.CountWorkflowRuns(context.Background(), testOwner, testRepo, 99, "queued")
	require.NoError(t, err)
	assert.Equal(t, 4, cnt)
}

func TestFindWorkflowByPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bazelbuild/bazel-central-registry/actions/workflows", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"total_count": 2,
			"workflows": []map[string]any{
				{"id": 1, "name": "Presubmit", "path": ".github/workflows/presubmit.yml"},
				{"id": 2, "name": "Dismiss approvals", "path": ".github/workflows/dismiss_approvals.yml"},
			},
		})
	})

	clt := newTestClient(t, mux)

	wf, err := clt.FindWorkflowByPath(context.Background(), testOwner, testRepo, ".github/workflows/dismiss_approvals.yml")
	require.NoError(t, err)
	assert.Equal(t, int64(2), wf.ID)

	_, err = clt.FindWorkflowByPath(context.Background(), testOwner, testRepo, ".github/workflows/missing.yml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddLabelRejectsEmptyLabel(t *testing.T) {
	err := (&Client{}).AddLabel(context.Background(), testOwner, testRepo, 1, "")
	assert.Error(t, err)
}
