// Package gate blocks until a GitHub Actions workflow has no queued or
// running workflow runs.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/boterr"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const loggerName = "gate"

const (
	DefPollInterval = 5 * time.Second
	DefTimeout      = 30 * time.Minute
)

// InFlightStatuses are the workflow run states of runs that did not finish.
var InFlightStatuses = []string{"queued", "in_progress", "requested", "pending", "waiting"}

type GithubClient interface {
	FindWorkflowByPath(ctx context.Context, owner, repo, path string) (*githubclt.Workflow, error)
	CountWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, status string) (int, error)
}

// Gate waits until all runs of a workflow finished.
type Gate struct {
	clt          GithubClient
	owner        string
	repo         string
	workflowPath string

	pollInterval time.Duration
	timeout      time.Duration

	logger *zap.Logger
}

type Option func(*Gate)

// WithPollInterval sets the duration between checking the workflow runs.
func WithPollInterval(d time.Duration) Option {
	return func(g *Gate) {
		g.pollInterval = d
	}
}

// WithTimeout sets the maximum duration Wait blocks.
// A value <=0 disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		g.timeout = d
	}
}

func New(clt GithubClient, owner, repo, workflowPath string, opts ...Option) *Gate {
	g := Gate{
		clt:          clt,
		owner:        owner,
		repo:         repo,
		workflowPath: workflowPath,
		pollInterval: DefPollInterval,
		timeout:      DefTimeout,
		logger: zap.L().Named(loggerName).With(
			logfields.RepositoryOwner(owner),
			logfields.Repository(repo),
			zap.String("github.workflow_path", workflowPath),
		),
	}

	for _, opt := range opts {
		opt(&g)
	}

	return &g
}

// Wait blocks until the workflow has no runs in one of the
// InFlightStatuses.
// If the workflow does not exist, an error is returned immediately.
// If the timeout expires before all runs finished, an error wrapping
// context.DeadlineExceeded is returned.
func (g *Gate) Wait(ctx context.Context) error {
	startTime := time.Now()

	if g.timeout > 0 {
		var cancelFn context.CancelFunc
		ctx, cancelFn = context.WithTimeout(ctx, g.timeout)
		defer cancelFn()
	}

	wf, err := g.clt.FindWorkflowByPath(ctx, g.owner, g.repo, g.workflowPath)
	if err != nil {
		if errors.Is(err, githubclt.ErrNotFound) {
			return fmt.Errorf("workflow %s does not exist, the order of approval dismissals and reviews can not be ensured: %w", g.workflowPath, err)
		}

		return fmt.Errorf("looking up workflow %s failed: %w", g.workflowPath, err)
	}

	logger := g.logger.With(zap.Int64("github.workflow_id", wf.ID))

	bo := backoff.NewConstantBackOff(g.pollInterval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for runs of workflow %s to finish failed: %w", g.workflowPath, ctx.Err())

		case <-timer.C:
			cnt, err := g.inFlightRuns(ctx, wf.ID)
			if err != nil {
				var retryableErr *boterr.RetryableError
				if !errors.As(err, &retryableErr) {
					return err
				}

				logger.Info(
					"retrieving workflow runs failed, retrying",
					logfields.Event("gate_workflow_runs_retrieval_failed"),
					zap.Error(err),
				)
				timer.Reset(max(bo.NextBackOff(), time.Until(retryableErr.After)))

				continue
			}

			if cnt == 0 {
				metrics.WaitDurationObserve(time.Since(startTime))

				logger.Debug(
					"all workflow runs finished",
					logfields.Event("gate_workflow_runs_finished"),
					zap.Duration("waited", time.Since(startTime)),
				)

				return nil
			}

			retryIn := bo.NextBackOff()
			logger.Info(
				"waiting for workflow runs to finish",
				logfields.Event("gate_waiting_for_workflow_runs"),
				zap.Int("workflow_runs_in_flight", cnt),
				zap.Duration("retry_in", retryIn),
			)
			timer.Reset(retryIn)
		}
	}
}

func (g *Gate) inFlightRuns(ctx context.Context, workflowID int64) (int, error) {
	var sum int

	for _, status := range InFlightStatuses {
		cnt, err := g.clt.CountWorkflowRuns(ctx, g.owner, g.repo, workflowID, status)
		if err != nil {
			return 0, fmt.Errorf("counting %s runs of workflow %s failed: %w", status, g.workflowPath, err)
		}

		sum += cnt
	}

	return sum, nil
}
