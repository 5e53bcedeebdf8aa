package review

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
)

func TestCutoffIgnoresMergeCommits(t *testing.T) {
	commits := []*githubclt.Commit{
		commit("c1", 1, testStart),
		commit("c2", 1, testStart.Add(time.Hour)),
		commit("merge", 2, testStart.Add(2*time.Hour)),
	}

	c, ts, err := Cutoff(commits)
	require.NoError(t, err)
	assert.Equal(t, "c2", c.SHA)
	assert.Equal(t, testStart.Add(time.Hour), ts)
}

func TestCutoffUsesLaterOfAuthorAndCommitterDate(t *testing.T) {
	c := commit("amended", 1, testStart)
	c.CommittedAt = testStart.Add(time.Hour)

	_, ts, err := Cutoff([]*githubclt.Commit{c})
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(time.Hour), ts)
}

func TestCutoffWithoutNonMergeCommitFails(t *testing.T) {
	_, _, err := Cutoff([]*githubclt.Commit{commit("merge", 2, testStart)})
	assert.ErrorIs(t, err, ErrNoNonMergeCommit)

	_, _, err = Cutoff(nil)
	assert.ErrorIs(t, err, ErrNoNonMergeCommit)
}

func TestLatestReviewWinsIndependentOfOrder(t *testing.T) {
	reviews := []*githubclt.Review{
		review(1, "alice", githubclt.ReviewStateApproved, testStart.Add(1*time.Minute)),
		review(2, "alice", githubclt.ReviewStateChangesRequested, testStart.Add(3*time.Minute)),
		review(3, "bob", githubclt.ReviewStateChangesRequested, testStart.Add(2*time.Minute)),
		review(4, "bob", githubclt.ReviewStateApproved, testStart.Add(4*time.Minute)),
		review(5, "carol", githubclt.ReviewStateCommented, testStart.Add(5*time.Minute)),
	}

	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		shuffled := make([]*githubclt.Review, len(reviews))
		copy(shuffled, reviews)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		latest := LatestReviews(shuffled, testStart)
		require.Len(t, latest, 3)
		assert.Equal(t, int64(2), latest["alice"].ID)
		assert.Equal(t, int64(4), latest["bob"].ID)
		assert.Equal(t, []string{"bob"}, ApproversOf(latest).Sorted())
	}
}

func TestReviewsBeforeCutoffAreExcluded(t *testing.T) {
	cutoff := testStart.Add(time.Hour)

	reviews := []*githubclt.Review{
		review(1, "alice", githubclt.ReviewStateApproved, cutoff.Add(-time.Second)),
		review(2, "bob", githubclt.ReviewStateApproved, cutoff),
		review(3, "carol", githubclt.ReviewStateApproved, cutoff.Add(time.Second)),
		review(4, "dave", githubclt.ReviewStatePending, time.Time{}),
	}

	latest := LatestReviews(reviews, cutoff)
	assert.Equal(t, []string{"bob", "carol"}, ApproversOf(latest).Sorted())
}

func TestOutdatedApprovalDoesNotOverrideNewerRejection(t *testing.T) {
	cutoff := testStart

	reviews := []*githubclt.Review{
		review(1, "alice", githubclt.ReviewStateChangesRequested, cutoff.Add(time.Minute)),
		review(2, "alice", githubclt.ReviewStateApproved, cutoff.Add(-time.Minute)),
	}

	assert.Equal(t, 0, ApproversOf(LatestReviews(reviews, cutoff)).Len())
}

func TestLatestReviewTieKeepsFirst(t *testing.T) {
	reviews := []*githubclt.Review{
		review(1, "alice", githubclt.ReviewStateApproved, testStart),
		review(2, "alice", githubclt.ReviewStateCommented, testStart),
	}

	latest := LatestReviews(reviews, testStart)
	assert.Equal(t, int64(1), latest["alice"].ID)
}

func TestCollect(t *testing.T) {
	clt := newMockAPI(t)

	clt.EXPECT().ListPullRequestCommits(gomock.Any(), testOwner, testRepo, 9).Return([]*githubclt.Commit{
		commit("c1", 1, testStart),
		commit("c2", 1, testStart.Add(time.Hour)),
		commit("merge-main", 2, testStart.Add(3*time.Hour)),
	}, nil)
	clt.EXPECT().ListPullRequestReviews(gomock.Any(), testOwner, testRepo, 9).Return([]*githubclt.Review{
		review(1, "alice", githubclt.ReviewStateApproved, testStart.Add(30*time.Minute)),
		review(2, "bob", githubclt.ReviewStateApproved, testStart.Add(2*time.Hour)),
	}, nil)

	approvals, err := NewApprovalCollector(clt).Collect(context.Background(), testOwner, testRepo, 9)
	require.NoError(t, err)

	assert.Equal(t, "c2", approvals.CutoffCommit)
	assert.Equal(t, testStart.Add(time.Hour), approvals.Cutoff)
	assert.Equal(t, []string{"bob"}, approvals.Approvers.Sorted())
}
