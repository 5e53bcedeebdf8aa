// Package prfilter selects pull requests by evaluating a jq expression
// against their JSON representation.
package prfilter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
)

// Filter matches pull requests against a jq query.
// A Filter without query matches all pull requests.
type Filter struct {
	query *gojq.Query
}

// New parses jqQuery. If jqQuery is empty, the returned filter matches
// every pull request.
func New(jqQuery string) (*Filter, error) {
	if strings.TrimSpace(jqQuery) == "" {
		return &Filter{}, nil
	}

	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing jq query %q failed: %w", jqQuery, err)
	}

	return &Filter{query: query}, nil
}

func goJQIterToSlice(iter gojq.Iter) ([]any, []error) {
	var result []any
	var errs []error

	for {
		res, ok := iter.Next()
		if !ok {
			return result, errs
		}

		if err, isErr := res.(error); isErr {
			errs = append(errs, err)
			continue
		}

		result = append(result, res)
	}
}

func errString(errs []error) string {
	var result strings.Builder

	for i, err := range errs {
		if i > 0 {
			result.WriteString("; ")
		}

		result.WriteString(fmt.Sprintf("error %d: %s", i, err))
	}

	return result.String()
}

// Match returns true if the query evaluates to true for the pull
// request. The query is run against the GitHub API representation of the
// pull request when it is available.
// The query must return exactly one bool, otherwise an error is returned.
func (f *Filter) Match(ctx context.Context, pr *githubclt.PullRequest) (bool, error) {
	if f.query == nil {
		return true, nil
	}

	var prJSON []byte
	var err error
	if pr.Raw != nil {
		prJSON, err = json.Marshal(pr.Raw)
	} else {
		prJSON, err = json.Marshal(pr)
	}
	if err != nil {
		return false, fmt.Errorf("marshaling pull request to json failed: %w", err)
	}

	var prUn any
	if err := json.Unmarshal(prJSON, &prUn); err != nil {
		return false, fmt.Errorf("unmarshaling json failed: %w", err)
	}

	result, errs := goJQIterToSlice(f.query.RunWithContext(ctx, prUn))
	if len(errs) != 0 {
		return false, fmt.Errorf("json query returned errors, query: %q, errors: %s", f.query.String(), errString(errs))
	}

	if len(result) != 1 {
		return false, fmt.Errorf(
			"json query returned %d results, expected 1, query: %q, result: '%+v'",
			len(result), f.query.String(), result,
		)
	}

	val, ok := result[0].(bool)
	if !ok {
		return false, fmt.Errorf(
			"json query returned non-bool result: %+v (%T), query: %q",
			result[0], result[0], f.query.String(),
		)
	}

	return val, nil
}

func (f *Filter) String() string {
	if f.query == nil {
		return ""
	}

	return f.query.String()
}
