// Package review decides if the module changes of a pull request are
// approved by the maintainers of the modules and approves, merges or
// revokes the approval of the pull request accordingly.
//
// The head commit of a pull request can change at any time while it is
// evaluated. The head commit is recorded when the evaluation starts and
// compared again before any change is done on GitHub. If it differs, the
// evaluation is discarded and a *StaleDataError is returned.
package review
