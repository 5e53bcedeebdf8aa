package cfg

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCfg = `
github_api_token = "tok"
repository = "bazelbuild/bazel-central-registry"
log_format = "json"
dry_run = true

[review]
merge_method = "rebase"
author_self_approval = false
pr_filter_query = '.base.ref == "main"'

[gate]
workflow_path = ".github/workflows/dismiss_approvals.yml"
poll_interval = "1s"

[notify]
max_maintainer_groups = 5

[server]
http_listen_addr = ":8080"
`

// unsetEnv removes the environment variables that are read by Load for
// the duration of the test.
func unsetEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"GITHUB_TOKEN",
		"GITHUB_REPOSITORY",
		"BCRBOT_STABLE_BRANCH",
		"BCRBOT_LOG_FORMAT",
		"BCRBOT_LOG_LEVEL",
		"BCRBOT_DRY_RUN",
		"BCRBOT_AUTHOR_SELF_APPROVAL",
		"BCRBOT_GATE_DISABLED",
		"BCRBOT_PR_FILTER_QUERY",
		"BCRBOT_HTTP_LISTEN_ADDR",
		"BCRBOT_WEBHOOK_SECRET",
		"BCRBOT_PUSHGATEWAY_URL",
		"GITHUB_WORKSPACE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad(t *testing.T) {
	unsetEnv(t)

	cfg, err := Load(strings.NewReader(testCfg))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.GithubAPIToken)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "rebase", cfg.Review.MergeMethod)
	assert.False(t, cfg.Review.AuthorSelfApproval)
	assert.Equal(t, `.base.ref == "main"`, cfg.Review.PRFilterQuery)
	assert.Equal(t, time.Second, Duration(cfg.Gate.PollInterval))
	assert.Equal(t, 5, cfg.Notify.MaxMaintainerGroups)
	assert.Equal(t, ":8080", cfg.Server.HTTPListenAddr)

	owner, name, err := cfg.RepositoryOwnerAndName()
	require.NoError(t, err)
	assert.Equal(t, "bazelbuild", owner)
	assert.Equal(t, "bazel-central-registry", name)
}

func TestDefaults(t *testing.T) {
	unsetEnv(t)
	cfg, err := Load(strings.NewReader(`repository = "bazelbuild/bazel-central-registry"`))
	require.NoError(t, err)

	assert.Equal(t, DefStableBranch, cfg.StableBranch)
	assert.Equal(t, DefLogFormat, cfg.LogFormat)
	assert.Equal(t, DefLogLevel, cfg.LogLevel)
	assert.Equal(t, DefCheckoutDir, cfg.CheckoutDir)
	assert.Equal(t, DefMergeMethod, cfg.Review.MergeMethod)
	assert.Equal(t, DefCITriggerLabel, cfg.Review.CITriggerLabel)
	assert.Equal(t, DefLowCIPriorityLabel, cfg.Review.LowCIPriorityLabel)
	assert.Equal(t, DefAutoMergedLabel, cfg.Review.AutoMergedLabel)
	assert.Equal(t, DefManyModulesThreshold, cfg.Review.ManyModulesThreshold)
	assert.True(t, cfg.Review.AuthorSelfApproval)
	assert.Equal(t, 30*time.Minute, Duration(cfg.Review.RetryTimeout))
	assert.Equal(t, 5*time.Second, Duration(cfg.Gate.PollInterval))
	assert.Equal(t, 30*time.Minute, Duration(cfg.Gate.Timeout))
	assert.False(t, cfg.Gate.Disabled)
	assert.Equal(t, DefGateWorkflowPath, cfg.Gate.WorkflowPath)
	assert.Equal(t, DefFallbackTeam, cfg.Notify.FallbackTeam)
	assert.Equal(t, DefMaxMaintainerGroups, cfg.Notify.MaxMaintainerGroups)
	assert.Equal(t, 14*24*time.Hour, Duration(cfg.Notify.CommentDedupWindow))
	assert.Equal(t, DefCommandTrigger, cfg.Commands.Trigger)
	assert.Equal(t, DefWebhookEndpoint, cfg.Server.WebhookEndpoint)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	unsetEnv(t)
	t.Setenv("GITHUB_TOKEN", "envtok")
	t.Setenv("GITHUB_REPOSITORY", "someone/registry")
	t.Setenv("BCRBOT_DRY_RUN", "false")
	t.Setenv("BCRBOT_AUTHOR_SELF_APPROVAL", "true")

	cfg, err := Load(strings.NewReader(testCfg))
	require.NoError(t, err)

	assert.Equal(t, "envtok", cfg.GithubAPIToken)
	assert.Equal(t, "someone/registry", cfg.Repository)
	assert.False(t, cfg.DryRun)
	assert.True(t, cfg.Review.AuthorSelfApproval)
}

func TestAuthorSelfApprovalFromFile(t *testing.T) {
	for _, val := range []bool{true, false} {
		t.Run(strconv.FormatBool(val), func(t *testing.T) {
			unsetEnv(t)

			cfg, err := Load(strings.NewReader(
				"repository = \"a/b\"\n[review]\nauthor_self_approval = " + strconv.FormatBool(val),
			))
			require.NoError(t, err)
			assert.Equal(t, val, cfg.Review.AuthorSelfApproval)
		})
	}
}

func TestAuthorSelfApprovalFromEnvironment(t *testing.T) {
	unsetEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "a/b")
	t.Setenv("BCRBOT_AUTHOR_SELF_APPROVAL", "false")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.False(t, cfg.Review.AuthorSelfApproval)
}

func TestGateDisabled(t *testing.T) {
	unsetEnv(t)

	cfg, err := Load(strings.NewReader("repository = \"a/b\"\n[gate]\ndisabled = true"))
	require.NoError(t, err)
	assert.True(t, cfg.Gate.Disabled)
	assert.Equal(t, DefGateWorkflowPath, cfg.Gate.WorkflowPath)
}

func TestLoadWithoutFile(t *testing.T) {
	unsetEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "bazelbuild/bazel-central-registry")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "bazelbuild/bazel-central-registry", cfg.Repository)
}

func TestValidate(t *testing.T) {
	tcs := []struct {
		name string
		cfg  string
		err  string
	}{
		{"missingRepository", ``, "repository"},
		{"repositoryWithoutOwner", `repository = "registry"`, "OWNER/NAME"},
		{"invalidMergeMethod", "repository = \"a/b\"\n[review]\nmerge_method = \"fast-forward\"", "merge_method"},
		{"invalidDuration", "repository = \"a/b\"\n[gate]\ntimeout = \"soon\"", "gate.timeout"},
		{"negativeDuration", "repository = \"a/b\"\n[gate]\npoll_interval = \"-1s\"", "gate.poll_interval"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			unsetEnv(t)

			_, err := Load(strings.NewReader(tc.cfg))
			assert.ErrorContains(t, err, tc.err)
		})
	}
}
