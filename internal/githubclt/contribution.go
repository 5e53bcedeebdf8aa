package githubclt

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
)

// HasMergedPullRequest returns true if author created at least one pull
// request in the repository that was merged.
func (clt *Client) HasMergedPullRequest(ctx context.Context, owner, repo, author string) (bool, error) {
	var q struct {
		Search struct {
			IssueCount int
		} `graphql:"search(query: $query, type: ISSUE, first: 1)"`
	}

	vars := map[string]interface{}{
		"query": githubv4.String(
			fmt.Sprintf("is:pr is:merged author:%s repo:%s/%s", author, owner, repo),
		),
	}

	err := clt.graphQLClt.Query(ctx, &q, vars)
	if err != nil {
		return false, clt.wrapGraphQLRetryableErrors(err)
	}

	return q.Search.IssueCount > 0, nil
}
