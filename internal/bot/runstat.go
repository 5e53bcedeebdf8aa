package bot

import (
	"time"

	"go.uber.org/zap"
)

// runStat are statistics of a review run over all open pull requests.
type runStat struct {
	StartTime time.Time
	EndTime   time.Time
	Seen      uint
	Filtered  uint
	Reviewed  uint
	Merged    uint
	Stale     uint
	Failures  uint
}

func (s *runStat) LogFields() []zap.Field {
	return []zap.Field{
		zap.Duration("review_run_duration", s.EndTime.Sub(s.StartTime)),
		zap.Uint("review_run.seen", s.Seen),
		zap.Uint("review_run.filtered", s.Filtered),
		zap.Uint("review_run.reviewed", s.Reviewed),
		zap.Uint("review_run.merged", s.Merged),
		zap.Uint("review_run.stale", s.Stale),
		zap.Uint("review_run.failures", s.Failures),
	}
}
