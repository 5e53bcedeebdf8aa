package review

import (
	"errors"
	"fmt"
)

// ErrNoNonMergeCommit is returned when a pull request only consists of
// merge commits.
var ErrNoNonMergeCommit = errors.New("pull request has no non-merge commit")

// StaleDataError is returned when the head commit of a pull request changed
// while it was evaluated.
type StaleDataError struct {
	PullRequest     int
	ExpectedHeadSHA string
	CurrentHeadSHA  string
	// Stage describes the step during that the change was detected.
	Stage string
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf(
		"pull request #%d changed while %s: head commit is %s, expected %s",
		e.PullRequest, e.Stage, e.CurrentHeadSHA, e.ExpectedHeadSHA,
	)
}

// IsStale returns true if err is or wraps a *StaleDataError.
func IsStale(err error) bool {
	var staleErr *StaleDataError
	return errors.As(err, &staleErr)
}

// IdentityVerificationError is returned when the GitHub user id recorded
// for a maintainer in the module metadata does not match the id GitHub
// reports for the handle, or when the id could not be retrieved.
type IdentityVerificationError struct {
	Module     string
	Handle     string
	ExpectedID int64
	ActualID   int64
	Err        error
}

func (e *IdentityVerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"verifying identity of maintainer %s of module %s failed: %s",
			e.Handle, e.Module, e.Err,
		)
	}

	return fmt.Sprintf(
		"maintainer %s of module %s does not match the user id %d, github reports id %d",
		e.Handle, e.Module, e.ExpectedID, e.ActualID,
	)
}

func (e *IdentityVerificationError) Unwrap() error {
	return e.Err
}
