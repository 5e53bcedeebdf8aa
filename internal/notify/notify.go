// Package notify informs module maintainers about pull requests that change
// their modules.
package notify

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/review"
)

const loggerName = "notifier"

const (
	DefFallbackTeam        = "@bazelbuild/bcr-maintainers"
	DefMaxMaintainerGroups = 10
	DefCommentDedupWindow  = 14 * 24 * time.Hour
)

const diffHint = `You can view a diff against the previous version in the "Generate module diff" check.`

type GithubClient interface {
	review.GithubClient
	ListIssueComments(ctx context.Context, owner, repo string, issueOrPRNr int, since time.Time) ([]*githubclt.Comment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, issueOrPRNr int, comment string) error
}

type Config struct {
	RepositoryOwner string
	Repository      string
	StableBranch    string
	// FallbackTeam is mentioned when no module maintainer can be notified.
	FallbackTeam string
	// MaxMaintainerGroups is the maximum number of maintainer groups
	// that are notified. If more groups exist, only the author is
	// informed that the pull request changes too many modules.
	MaxMaintainerGroups int
	// ManyModulesThreshold is the number of changed modules above which
	// LowCIPriorityLabel is added when MaxMaintainerGroups is exceeded.
	ManyModulesThreshold int
	LowCIPriorityLabel   string
	// CommentDedupWindow is the period in which a comment is not posted
	// again if it exists already.
	CommentDedupWindow time.Duration
}

// Result describes the notifications that were sent.
type Result struct {
	Posted []string
	// Duplicates are comments that were not posted because they existed
	// already.
	Duplicates     []string
	TooManyModules bool
	LabelsAdded    []string
}

// Notifier posts comments mentioning the maintainers of the modules
// changed by a pull request.
type Notifier struct {
	clt         GithubClient
	cfg         *Config
	changes     *review.ChangeSetResolver
	maintainers *review.MaintainerResolver
	logger      *zap.Logger
}

func New(clt GithubClient, cfg *Config) *Notifier {
	return &Notifier{
		clt:         clt,
		cfg:         cfg,
		changes:     review.NewChangeSetResolver(clt),
		maintainers: review.NewMaintainerResolver(clt, cfg.StableBranch),
		logger:      zap.L().Named(loggerName),
	}
}

// Notify mentions the maintainers of every module changed by the pull
// request in a comment. Maintainers that maintain exactly the same set of
// changed modules are mentioned in the same comment. The author and
// maintainers that opted out of notifications are not mentioned.
//
// The FallbackTeam is notified about modules without maintainers, modules
// that are only maintained by the author and modules with only metadata
// changes.
func (n *Notifier) Notify(ctx context.Context, number int, author string) (*Result, error) {
	owner, repo := n.cfg.RepositoryOwner, n.cfg.Repository
	logger := n.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Author(author),
	)

	cs, err := n.changes.Resolve(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	resolution, err := n.maintainers.Resolve(ctx, owner, repo, cs.Modules, true)
	if err != nil {
		return nil, fmt.Errorf("resolving maintainers failed: %w", err)
	}

	p := poster{
		clt:    n.clt,
		owner:  owner,
		repo:   repo,
		number: number,
		since:  time.Now().Add(-n.cfg.CommentDedupWindow),
		logger: logger,
	}

	groups := resolution.Maintainers.Groups()
	if len(groups) > n.cfg.MaxMaintainerGroups {
		logger.Info(
			"too many maintainer groups, only notifying the author",
			logfields.Event("notify_too_many_maintainers"),
			zap.Int("maintainer_groups", len(groups)),
		)

		p.result.TooManyModules = true

		body := fmt.Sprintf(
			"Hello @%s, too many modules have been updated in this PR. "+
				"If this is intended, please consider breaking it down into multiple PRs.",
			author,
		)
		if err := p.post(ctx, body); err != nil {
			return nil, err
		}

		if n.cfg.LowCIPriorityLabel != "" && cs.Modules.Len() > n.cfg.ManyModulesThreshold {
			if err := n.clt.AddLabel(ctx, owner, repo, number, n.cfg.LowCIPriorityLabel); err != nil {
				return nil, fmt.Errorf("adding label %s failed: %w", n.cfg.LowCIPriorityLabel, err)
			}
			p.result.LabelsAdded = append(p.result.LabelsAdded, n.cfg.LowCIPriorityLabel)
		}
	} else {
		for _, g := range groups {
			if err := p.post(ctx, n.groupComment(g, author)); err != nil {
				return nil, err
			}
		}
	}

	if resolution.Orphans.Len() > 0 {
		body := fmt.Sprintf(
			"Hello %s, modules without existing maintainers (%s) have been updated in this PR.\nPlease review the changes. %s",
			n.cfg.FallbackTeam, strings.Join(resolution.Orphans.Sorted(), ", "), diffHint,
		)
		if err := p.post(ctx, body); err != nil {
			return nil, err
		}
	}

	if metadataOnly := cs.MetadataOnly(); metadataOnly.Len() > 0 {
		body := fmt.Sprintf(
			"Hello %s, modules with only metadata.json changes (%s) have been updated in this PR.\nPlease review the changes.",
			n.cfg.FallbackTeam, strings.Join(metadataOnly.Sorted(), ", "),
		)
		if err := p.post(ctx, body); err != nil {
			return nil, err
		}
	}

	return &p.result, nil
}

func (n *Notifier) groupComment(g *review.MaintainerGroup, author string) string {
	modules := strings.Join(g.Modules, ", ")

	var mentions []string
	for _, m := range g.Maintainers {
		if m == author {
			continue
		}
		mentions = append(mentions, "@"+m)
	}

	if len(mentions) == 0 {
		return fmt.Sprintf(
			"Hello %s, modules (%s) have been updated in this PR.\nPlease review the changes. %s",
			n.cfg.FallbackTeam, modules, diffHint,
		)
	}

	return fmt.Sprintf(
		"Hello %s, modules you maintain (%s) have been updated in this PR.\nPlease review the changes. %s",
		strings.Join(mentions, ", "), modules, diffHint,
	)
}

// poster creates comments on a pull request, skipping comments that
// exist already.
type poster struct {
	clt    GithubClient
	owner  string
	repo   string
	number int
	since  time.Time
	logger *zap.Logger

	existing []string
	fetched  bool
	result   Result
}

func (p *poster) post(ctx context.Context, body string) error {
	if !p.fetched {
		comments, err := p.clt.ListIssueComments(ctx, p.owner, p.repo, p.number, p.since)
		if err != nil {
			return fmt.Errorf("listing existing comments failed: %w", err)
		}

		for _, c := range comments {
			p.existing = append(p.existing, c.Body)
		}
		p.fetched = true
	}

	if slices.Contains(p.existing, body) {
		p.logger.Debug(
			"skipping comment, it was already posted",
			logfields.Event("notify_comment_exists"),
			zap.Time("since", p.since),
		)
		p.result.Duplicates = append(p.result.Duplicates, body)

		return nil
	}

	if err := p.clt.CreateIssueComment(ctx, p.owner, p.repo, p.number, body); err != nil {
		return fmt.Errorf("creating comment failed: %w", err)
	}

	p.existing = append(p.existing, body)
	p.result.Posted = append(p.result.Posted, body)

	p.logger.Info(
		"posted notification",
		logfields.Event("notify_comment_posted"),
		zap.String("github.comment", body),
	)

	return nil
}
