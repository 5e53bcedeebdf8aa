package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/boterr"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const loggerName = "review"

const (
	approveReviewBody = "All modules in this PR have been approved by their maintainers. " +
		"This PR will be merged if all presubmit checks pass."
	revokeReviewBody = "Require module maintainers' approval."
)

// Outcome summarizes the result of a reconciliation.
type Outcome string

const (
	OutcomeSkippedDraft  Outcome = "skipped_draft"
	OutcomeSkippedClosed Outcome = "skipped_closed"
	OutcomeNoModules     Outcome = "no_modules"
	OutcomeBlocked       Outcome = "blocked"
	OutcomeNotCovered    Outcome = "not_covered"
	OutcomeMerged        Outcome = "merged"
	OutcomeMergeFailed   Outcome = "merge_failed"
	OutcomeStale         Outcome = "stale"
	OutcomeError         Outcome = "error"
)

// Result is the result of reconciling a pull request.
type Result struct {
	PullRequest int
	HeadSHA     string
	Outcome     Outcome
	ChangeSet   *ChangeSet
	Orphans     []string
	Coverage    *Coverage
	Decision    *Decision
	// Executed are the actions that succeeded.
	Executed []Action
	// MergeErr is the error returned by GitHub when merging failed.
	MergeErr error
}

type Config struct {
	RepositoryOwner   string
	Repository        string
	StableBranch      string
	AllowSelfApproval bool
	Policy            Policy
}

// Reconciler approves and merges pull requests whose module changes are
// approved by the module maintainers and revokes approvals of the bot when
// they are not.
type Reconciler struct {
	clt         GithubClient
	cfg         *Config
	changes     *ChangeSetResolver
	maintainers *MaintainerResolver
	approvals   *ApprovalCollector
	logger      *zap.Logger

	botLoginMu sync.Mutex
	botLogin   string
}

func NewReconciler(clt GithubClient, cfg *Config) *Reconciler {
	return &Reconciler{
		clt:         clt,
		cfg:         cfg,
		changes:     NewChangeSetResolver(clt),
		maintainers: NewMaintainerResolver(clt, cfg.StableBranch),
		approvals:   NewApprovalCollector(clt),
		logger:      zap.L().Named(loggerName),
	}
}

// ReviewPR evaluates a pull request and executes the resulting actions.
//
// Drafts, closed pull requests and pull requests that do not change a
// module are skipped.
// If the pull request changes during the evaluation, a *StaleDataError is
// returned and nothing is changed on GitHub.
func (r *Reconciler) ReviewPR(ctx context.Context, number int) (*Result, error) {
	result, err := r.reviewPR(ctx, number)
	if err != nil {
		if IsStale(err) {
			metrics.OutcomeInc(OutcomeStale)
		} else {
			metrics.OutcomeInc(OutcomeError)
		}

		return result, err
	}

	metrics.OutcomeInc(result.Outcome)

	return result, nil
}

func (r *Reconciler) reviewPR(ctx context.Context, number int) (*Result, error) {
	owner, repo := r.cfg.RepositoryOwner, r.cfg.Repository

	pr, err := r.clt.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	logger := r.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Commit(pr.HeadSHA),
		logfields.Author(pr.Author),
	)

	result := Result{PullRequest: number, HeadSHA: pr.HeadSHA}

	if pr.Draft {
		logger.Debug("skipping draft pull request", logfields.Event("review_skipped_draft"))
		result.Outcome = OutcomeSkippedDraft
		return &result, nil
	}

	if pr.State != "" && pr.State != "open" {
		logger.Debug("skipping pull request, it is not open",
			logfields.Event("review_skipped_closed"),
			zap.String("github.pull_request.state", pr.State),
		)
		result.Outcome = OutcomeSkippedClosed
		return &result, nil
	}

	cs, err := r.changes.ResolveAt(ctx, owner, repo, number, pr.HeadSHA)
	if err != nil {
		return nil, err
	}
	result.ChangeSet = cs

	if cs.Modules.Len() == 0 {
		logger.Debug("pull request does not change any modules", logfields.Event("review_skipped_no_modules"))
		result.Outcome = OutcomeNoModules
		return &result, nil
	}

	resolution, err := r.maintainers.Resolve(ctx, owner, repo, cs.Modules, false)
	if err != nil {
		return nil, fmt.Errorf("resolving maintainers failed: %w", err)
	}
	result.Orphans = resolution.Orphans.Sorted()

	approvals, err := r.approvals.Collect(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("collecting approvals failed: %w", err)
	}

	result.Coverage = Evaluate(cs.Modules, resolution.Maintainers, approvals.Approvers, pr.Author, r.cfg.AllowSelfApproval)

	botLogin, err := r.authenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving authenticated user failed: %w", err)
	}

	in := DecisionInput{
		InitialHeadSHA: pr.HeadSHA,
		Orphans:        resolution.Orphans,
		Coverage:       result.Coverage,
		BotApproved:    approvals.Approvers.Contains(botLogin),
		Labels:         pr.Labels,
	}

	r.evalCITriggerInputs(ctx, logger, pr, resolution, &in)

	current, err := r.clt.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}
	in.CurrentHeadSHA = current.HeadSHA

	result.Decision = Decide(&in, &r.cfg.Policy)

	logger.Info(
		"pull request evaluated",
		logfields.Event("review_evaluated"),
		logfields.Modules(cs.Modules.Sorted()),
		zap.Strings("orphan_modules", result.Orphans),
		zap.Strings("uncovered_modules", result.Coverage.Uncovered()),
		zap.Strings("approvers", approvals.Approvers.Sorted()),
		zap.Stringer("review_state", result.Decision.State),
		zap.Strings("review_actions", actionStrings(result.Decision.Actions)),
	)

	if result.Decision.State == StateStale {
		return &result, &StaleDataError{
			PullRequest:     number,
			ExpectedHeadSHA: pr.HeadSHA,
			CurrentHeadSHA:  current.HeadSHA,
			Stage:           "evaluating approvals",
		}
	}

	switch result.Decision.State {
	case StateBlocked:
		result.Outcome = OutcomeBlocked
	case StateNotCovered:
		result.Outcome = OutcomeNotCovered
	}

	if err := r.execute(ctx, logger, pr, &result); err != nil {
		return &result, err
	}

	return &result, nil
}

// evalCITriggerInputs retrieves the author information that decides if the
// CI trigger label is added. The information is only retrieved when the
// pull request does not have the label yet.
// Lookup failures are logged and count as false, they only withhold the
// label.
func (r *Reconciler) evalCITriggerInputs(ctx context.Context, logger *zap.Logger, pr *githubclt.PullRequest, resolution *Resolution, in *DecisionInput) {
	label := r.cfg.Policy.CITriggerLabel
	if label == "" || pr.HasLabel(label) {
		return
	}

	hasMerged, err := r.clt.HasMergedPullRequest(ctx, r.cfg.RepositoryOwner, r.cfg.Repository, pr.Author)
	if err != nil {
		logger.Warn(
			"checking if author has merged pull requests failed, not adding ci trigger label",
			logfields.Event("author_contribution_check_failed"),
			zap.Error(err),
		)
		return
	}
	in.AuthorHasMergedPR = hasMerged

	if !in.AuthorHasMergedPR || in.Coverage.AnyCovered() {
		return
	}

	if resolution.Maintainers.IsMaintainer(pr.Author) {
		in.AuthorIsMaintainer = true
		return
	}

	isMaintainer, err := r.clt.IsModuleMaintainer(ctx, r.cfg.RepositoryOwner, r.cfg.Repository, pr.AuthorID)
	if err != nil {
		logger.Warn(
			"checking if author is a module maintainer failed, not adding ci trigger label",
			logfields.Event("author_maintainer_check_failed"),
			zap.Error(err),
		)
		return
	}
	in.AuthorIsMaintainer = isMaintainer
}

func (r *Reconciler) execute(ctx context.Context, logger *zap.Logger, pr *githubclt.PullRequest, result *Result) error {
	owner, repo := r.cfg.RepositoryOwner, r.cfg.Repository

	for _, action := range result.Decision.Actions {
		var err error

		switch action.Kind {
		case ActionApprove:
			err = r.clt.CreateReview(ctx, owner, repo, pr.Number, githubclt.ReviewEventApprove, approveReviewBody)

		case ActionMerge:
			err = r.merge(ctx, logger, pr, result)
			if err == nil && result.Outcome == OutcomeMergeFailed {
				continue
			}

		case ActionRevokeApproval:
			err = r.clt.CreateReview(ctx, owner, repo, pr.Number, githubclt.ReviewEventRequestChanges, revokeReviewBody)

		case ActionAddLabel:
			err = r.clt.AddLabel(ctx, owner, repo, pr.Number, action.Label)

		default:
			err = fmt.Errorf("unsupported action: %s", action)
		}

		if err != nil {
			return fmt.Errorf("%s failed: %w", action, err)
		}

		metrics.SideEffectInc(action.Kind)
		result.Executed = append(result.Executed, action)

		logger.Info(
			"action executed",
			logfields.Event("review_action_executed"),
			zap.Stringer("review_action", action),
		)
	}

	return nil
}

// merge merges the pull request and adds the auto-merged label.
// If GitHub refuses to merge it, the failure is recorded in result and nil
// is returned.
func (r *Reconciler) merge(ctx context.Context, logger *zap.Logger, pr *githubclt.PullRequest, result *Result) error {
	owner, repo := r.cfg.RepositoryOwner, r.cfg.Repository

	err := r.clt.MergePullRequest(ctx, owner, repo, pr.Number, pr.HeadSHA, r.cfg.Policy.MergeMethod)
	if err != nil {
		var retryableErr *boterr.RetryableError
		if errors.As(err, &retryableErr) {
			return err
		}

		logger.Info(
			"merging pull request failed, it is probably not mergeable because of failed presubmit checks",
			logfields.Event("review_merge_failed"),
			zap.Bool("merge_rejected", errors.Is(err, githubclt.ErrMergeRejected)),
			zap.Error(err),
		)

		result.Outcome = OutcomeMergeFailed
		result.MergeErr = err

		return nil
	}

	result.Outcome = OutcomeMerged

	if r.cfg.Policy.AutoMergedLabel == "" {
		return nil
	}

	if err := r.clt.AddLabel(ctx, owner, repo, pr.Number, r.cfg.Policy.AutoMergedLabel); err != nil {
		return fmt.Errorf("adding label %s failed: %w", r.cfg.Policy.AutoMergedLabel, err)
	}

	return nil
}

func (r *Reconciler) authenticatedUser(ctx context.Context) (string, error) {
	r.botLoginMu.Lock()
	defer r.botLoginMu.Unlock()

	if r.botLogin != "" {
		return r.botLogin, nil
	}

	login, err := r.clt.AuthenticatedUser(ctx)
	if err != nil {
		return "", err
	}

	r.botLogin = login

	return login, nil
}

func actionStrings(actions []Action) []string {
	result := make([]string, 0, len(actions))
	for _, a := range actions {
		result = append(result, a.String())
	}
	return result
}
