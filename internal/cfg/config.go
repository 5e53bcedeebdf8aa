// Package cfg loads the bcrbot configuration from a TOML file and
// environment variables.
package cfg

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml"
)

const (
	DefStableBranch         = "main"
	DefLogFormat            = "logfmt"
	DefLogTimeKey           = "time_iso8601"
	DefLogLevel             = "info"
	DefMergeMethod          = "squash"
	DefCITriggerLabel       = "presubmit-auto-run"
	DefLowCIPriorityLabel   = "low-ci-priority"
	DefAutoMergedLabel      = "auto-merged"
	DefManyModulesThreshold = 10
	DefRetryTimeout         = "30m"
	DefGateWorkflowPath     = ".github/workflows/dismiss_approvals.yml"
	DefGatePollInterval     = "5s"
	DefGateTimeout          = "30m"
	DefFallbackTeam         = "@bazelbuild/bcr-maintainers"
	DefMaxMaintainerGroups  = 10
	DefCommentDedupWindow   = "336h"
	DefCommandTrigger       = "@bazel-io"
	DefWebhookEndpoint      = "/listener/github"
	DefPeriodicReview       = "10m"
	DefCheckoutDir          = "."
)

type Config struct {
	GithubAPIToken string `toml:"github_api_token" env:"GITHUB_TOKEN"`
	// Repository is the registry repository in the form OWNER/NAME.
	Repository   string `toml:"repository" env:"GITHUB_REPOSITORY"`
	StableBranch string `toml:"stable_branch" env:"BCRBOT_STABLE_BRANCH"`
	LogFormat    string `toml:"log_format" env:"BCRBOT_LOG_FORMAT"`
	LogTimeKey   string `toml:"log_time_key"`
	LogLevel     string `toml:"log_level" env:"BCRBOT_LOG_LEVEL"`
	DryRun       bool   `toml:"dry_run" env:"BCRBOT_DRY_RUN"`
	// CheckoutDir is the directory of a local checkout of the registry
	// repository at the pull request head, it is used by the module diff.
	CheckoutDir string `toml:"checkout_dir" env:"GITHUB_WORKSPACE"`

	Review   Review   `toml:"review"`
	Gate     Gate     `toml:"gate"`
	Notify   Notify   `toml:"notify"`
	Commands Commands `toml:"commands"`
	Server   Server   `toml:"server"`
	Metrics  Metrics  `toml:"metrics"`
}

type Review struct {
	MergeMethod          string `toml:"merge_method"`
	CITriggerLabel       string `toml:"ci_trigger_label"`
	LowCIPriorityLabel   string `toml:"low_ci_priority_label"`
	AutoMergedLabel      string `toml:"auto_merged_label"`
	ManyModulesThreshold int    `toml:"many_modules_threshold"`
	// AuthorSelfApproval allows a pull request author that maintains a
	// module to cover it without an additional approval. Defaults to
	// true when the key is absent.
	AuthorSelfApproval bool   `toml:"author_self_approval" env:"BCRBOT_AUTHOR_SELF_APPROVAL"`
	PRFilterQuery      string `toml:"pr_filter_query" env:"BCRBOT_PR_FILTER_QUERY"`
	RetryTimeout       string `toml:"retry_timeout"`
}

type Gate struct {
	// Disabled skips waiting for the approval dismissal workflow before
	// reviewing open pull requests.
	Disabled bool `toml:"disabled" env:"BCRBOT_GATE_DISABLED"`
	// WorkflowPath is the path of the workflow that dismisses approvals.
	WorkflowPath string `toml:"workflow_path"`
	PollInterval string `toml:"poll_interval"`
	Timeout      string `toml:"timeout"`
}

type Notify struct {
	FallbackTeam        string `toml:"fallback_team"`
	MaxMaintainerGroups int    `toml:"max_maintainer_groups"`
	CommentDedupWindow  string `toml:"comment_dedup_window"`
}

type Commands struct {
	Trigger string `toml:"trigger"`
}

type Server struct {
	HTTPListenAddr         string `toml:"http_listen_addr" env:"BCRBOT_HTTP_LISTEN_ADDR"`
	WebhookEndpoint        string `toml:"webhook_endpoint"`
	WebhookSecret          string `toml:"webhook_secret" env:"BCRBOT_WEBHOOK_SECRET"`
	PeriodicReviewInterval string `toml:"periodic_review_interval"`
}

type Metrics struct {
	PushgatewayURL string `toml:"pushgateway_url" env:"BCRBOT_PUSHGATEWAY_URL"`
}

// Load parses a TOML configuration from reader, applies environment
// variable overrides and sets defaults for unset values.
// A nil reader results in a configuration that is only populated by
// environment variables and defaults.
func Load(reader io.Reader) (*Config, error) {
	var result Config

	selfApprovalSet := false
	if reader != nil {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}

		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, err
		}

		if err := tree.Unmarshal(&result); err != nil {
			return nil, err
		}

		selfApprovalSet = tree.Has("review.author_self_approval")
	}

	if !selfApprovalSet {
		result.Review.AuthorSelfApproval = true
	}

	if err := env.Parse(&result); err != nil {
		return nil, fmt.Errorf("parsing environment variables failed: %w", err)
	}

	result.setDefaults()

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

func setDefault[T comparable](val *T, def T) {
	var zero T
	if *val == zero {
		*val = def
	}
}

func (c *Config) setDefaults() {
	setDefault(&c.StableBranch, DefStableBranch)
	setDefault(&c.LogFormat, DefLogFormat)
	setDefault(&c.LogTimeKey, DefLogTimeKey)
	setDefault(&c.LogLevel, DefLogLevel)
	setDefault(&c.CheckoutDir, DefCheckoutDir)

	setDefault(&c.Review.MergeMethod, DefMergeMethod)
	setDefault(&c.Review.CITriggerLabel, DefCITriggerLabel)
	setDefault(&c.Review.LowCIPriorityLabel, DefLowCIPriorityLabel)
	setDefault(&c.Review.AutoMergedLabel, DefAutoMergedLabel)
	setDefault(&c.Review.ManyModulesThreshold, DefManyModulesThreshold)
	setDefault(&c.Review.RetryTimeout, DefRetryTimeout)

	setDefault(&c.Gate.WorkflowPath, DefGateWorkflowPath)
	setDefault(&c.Gate.PollInterval, DefGatePollInterval)
	setDefault(&c.Gate.Timeout, DefGateTimeout)

	setDefault(&c.Notify.FallbackTeam, DefFallbackTeam)
	setDefault(&c.Notify.MaxMaintainerGroups, DefMaxMaintainerGroups)
	setDefault(&c.Notify.CommentDedupWindow, DefCommentDedupWindow)

	setDefault(&c.Commands.Trigger, DefCommandTrigger)

	setDefault(&c.Server.WebhookEndpoint, DefWebhookEndpoint)
	setDefault(&c.Server.PeriodicReviewInterval, DefPeriodicReview)
}

// Validate returns an error if a configuration value is invalid.
func (c *Config) Validate() error {
	var errs []error

	if _, _, err := c.RepositoryOwnerAndName(); err != nil {
		errs = append(errs, err)
	}

	switch c.Review.MergeMethod {
	case "merge", "squash", "rebase":
	default:
		errs = append(errs, fmt.Errorf("review.merge_method: unsupported value %q, must be merge, squash or rebase", c.Review.MergeMethod))
	}

	for name, val := range map[string]string{
		"review.retry_timeout":            c.Review.RetryTimeout,
		"gate.poll_interval":              c.Gate.PollInterval,
		"gate.timeout":                    c.Gate.Timeout,
		"notify.comment_dedup_window":     c.Notify.CommentDedupWindow,
		"server.periodic_review_interval": c.Server.PeriodicReviewInterval,
	} {
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, is %s", name, val))
		}
	}

	return errors.Join(errs...)
}

// RepositoryOwnerAndName splits Repository into its owner and name.
func (c *Config) RepositoryOwnerAndName() (owner, name string, err error) {
	owner, name, found := strings.Cut(c.Repository, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository: %q is not in the format OWNER/NAME", c.Repository)
	}

	return owner, name, nil
}

// Duration parses a duration configuration value that was checked by
// Validate.
func Duration(val string) time.Duration {
	d, err := time.ParseDuration(val)
	if err != nil {
		panic(fmt.Sprintf("invalid duration value %q: %s", val, err))
	}

	return d
}
