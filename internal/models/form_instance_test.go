package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanEnterFollowsTransitionTable(t *testing.T) {
	cases := []struct {
		target  Stage
		from    Stage
		allowed bool
	}{
		{StageSubmitted, StageDraft, true},
		{StageSubmitted, StageReturnedForRevision, false},
		{StageUnderReview, StageSubmitted, true},
		{StageUnderReview, StageDraft, false},
		{StageApproved, StageSubmitted, true},
		{StageApproved, StageUnderReview, true},
		{StageApproved, StageApproved, false},
		{StageRejected, StageSubmitted, true},
		{StageRejected, StageDraft, false},
		{StageReturnedForRevision, StageUnderReview, true},
		{StageReturnedForRevision, StageUnderAppeal, false},
		{StageUnderAppeal, StageRejected, true},
		{StageUnderAppeal, StageApproved, true},
		{StageUnderAppeal, StageSubmitted, false},
		{StageClosed, StageApproved, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.allowed, CanEnter(tc.target, tc.from), "from %s to %s", tc.from, tc.target)
	}
}

func TestReleasesSlot(t *testing.T) {
	require.True(t, StageRejected.ReleasesSlot())
	require.True(t, StageClosed.ReleasesSlot())

	// An instance under appeal still holds its slot even though a second
	// draft may be opened; see the lifecycle service tests.
	for _, stage := range []Stage{StageDraft, StageSubmitted, StageUnderReview, StageApproved, StageReturnedForRevision, StageUnderAppeal} {
		require.False(t, stage.ReleasesSlot(), "stage %s", stage)
	}
}

func TestStageIsValid(t *testing.T) {
	require.True(t, StageDraft.IsValid())
	require.True(t, StageClosed.IsValid())
	require.False(t, Stage("Pending").IsValid())
}
