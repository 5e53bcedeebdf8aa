package bot

import (
	"fmt"
	"strings"
)

// Mode is an operation mode of the bot.
type Mode string

const (
	ModeReviewPRs         Mode = "review_prs"
	ModeReviewPR          Mode = "review_pr"
	ModeNotifyMaintainers Mode = "notify_maintainers"
	ModeDismissApprovals  Mode = "dismiss_approvals"
	ModeDiffModule        Mode = "diff_module"
	ModeHandleComment     Mode = "handle_comment"
	ModeSkipCheck         Mode = "skip_check"
	ModeServe             Mode = "serve"
)

// Modes are all supported modes.
var Modes = []Mode{
	ModeReviewPRs,
	ModeReviewPR,
	ModeNotifyMaintainers,
	ModeDismissApprovals,
	ModeDiffModule,
	ModeHandleComment,
	ModeSkipCheck,
	ModeServe,
}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}

	return "", fmt.Errorf("unsupported mode: %q, supported modes: %s", s, modesString())
}

func modesString() string {
	strs := make([]string, 0, len(Modes))
	for _, m := range Modes {
		strs = append(strs, string(m))
	}

	return strings.Join(strs, ", ")
}
