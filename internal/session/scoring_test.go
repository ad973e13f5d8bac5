package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"livequiz-service/internal/domain"
)

func TestEvaluateMultipleChoice(t *testing.T) {
	q := choiceQuestion("q0", 30)
	require.True(t, Evaluate(q, "o2"))
	require.False(t, Evaluate(q, "o1"))
	require.False(t, Evaluate(q, "Right"), "option text is not an option ID")
	require.False(t, Evaluate(q, ""))
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := domain.Question{Type: domain.TrueFalse, CorrectAnswer: "true"}
	require.True(t, Evaluate(q, "true"))
	require.True(t, Evaluate(q, "TRUE"))
	require.True(t, Evaluate(q, "  True "))
	require.False(t, Evaluate(q, "false"))
	require.False(t, Evaluate(q, "yes"))
}

func TestEvaluateShortAnswerKeywordHeuristic(t *testing.T) {
	q := domain.Question{
		Type:     domain.ShortAnswer,
		Keywords: []string{"photosynthesis", "sunlight", "chlorophyll"},
	}
	// Three keywords: at least two must appear.
	require.True(t, Evaluate(q, "Plants use SUNLIGHT and chlorophyll in their leaves"))
	require.True(t, Evaluate(q, "photosynthesis converts sunlight"))
	require.False(t, Evaluate(q, "something about sunlight only"))
	require.False(t, Evaluate(q, ""))

	single := domain.Question{Type: domain.ShortAnswer, Keywords: []string{"mitochondria"}}
	require.True(t, Evaluate(single, "the Mitochondria is the powerhouse"))
	require.False(t, Evaluate(single, "the nucleus"))
}

func TestScoreQuestionFillsDerivedFields(t *testing.T) {
	q := choiceQuestion("q0", 30)
	subs := map[string]*domain.Submission{
		"a": {ParticipantID: "a", Value: "o2"},
		"b": {ParticipantID: "b", Value: "o1"},
	}
	scoreQuestion(q, subs, 100)

	require.True(t, subs["a"].Correct)
	require.Equal(t, 100, subs["a"].ScoreDelta)
	require.False(t, subs["b"].Correct)
	require.Equal(t, 0, subs["b"].ScoreDelta)
}

func TestBuildDistributionTrueFalse(t *testing.T) {
	q := domain.Question{Type: domain.TrueFalse, CorrectAnswer: "false"}
	subs := map[string]*domain.Submission{
		"a": {Value: "true"},
		"b": {Value: "FALSE"},
		"c": {Value: "false"},
	}
	dist := buildDistribution(q, 2, subs, 3, 4)

	require.Equal(t, 2, dist.QuestionIndex)
	require.Equal(t, 3, dist.ResponseCount)
	require.Equal(t, 1, dist.NotAnswered)
	require.Len(t, dist.Buckets, 2)
	require.Equal(t, "true", dist.Buckets[0].Key)
	require.Equal(t, 1, dist.Buckets[0].Count)
	require.Equal(t, 33, dist.Buckets[0].Percentage)
	require.False(t, dist.Buckets[0].Correct)
	require.Equal(t, "false", dist.Buckets[1].Key)
	require.Equal(t, 2, dist.Buckets[1].Count)
	require.Equal(t, 66, dist.Buckets[1].Percentage)
	require.True(t, dist.Buckets[1].Correct)
}

func TestBuildDistributionShortAnswerBucketsByCorrectness(t *testing.T) {
	q := domain.Question{Type: domain.ShortAnswer, Keywords: []string{"gravity"}}
	subs := map[string]*domain.Submission{
		"a": {Value: "gravity pulls things down"},
		"b": {Value: "magnets"},
	}
	scoreQuestion(q, subs, 100)
	dist := buildDistribution(q, 0, subs, 2, 2)

	require.Equal(t, "correct", dist.Buckets[0].Key)
	require.Equal(t, 1, dist.Buckets[0].Count)
	require.Equal(t, "incorrect", dist.Buckets[1].Key)
	require.Equal(t, 1, dist.Buckets[1].Count)
	require.Equal(t, 0, dist.NotAnswered)
}

func scoreboardFixture(t *testing.T) (domain.QuestionSet, map[string]*domain.Participant, []string, map[int]map[string]*domain.Submission) {
	t.Helper()
	set, err := domain.NewQuestionSet(choiceQuestions(2, 30), testBounds)
	require.NoError(t, err)
	participants := map[string]*domain.Participant{
		"a": {ID: "a", DisplayName: "Ada"},
		"b": {ID: "b", DisplayName: "Grace"},
		"c": {ID: "c", DisplayName: "Edsger"},
	}
	order := []string{"a", "b", "c"}
	submissions := map[int]map[string]*domain.Submission{
		0: {
			"a": {ParticipantID: "a", Value: "o2", SubmittedAtOffsetSeconds: 5},
			"b": {ParticipantID: "b", Value: "o2", SubmittedAtOffsetSeconds: 3},
			"c": {ParticipantID: "c", Value: "o1", SubmittedAtOffsetSeconds: 1},
		},
		1: {
			"a": {ParticipantID: "a", Value: "o2", SubmittedAtOffsetSeconds: 4},
		},
	}
	return set, participants, order, submissions
}

func TestBuildScoreboardRankingAndTies(t *testing.T) {
	set, participants, order, submissions := scoreboardFixture(t)
	board := buildScoreboard(set, participants, order, submissions, 100)

	require.Len(t, board, 3)
	require.Equal(t, "a", board[0].ParticipantID)
	require.Equal(t, 200, board[0].TotalScore)
	require.Equal(t, 2, board[0].CorrectCount)
	require.Equal(t, 9, board[0].TotalTimeSpentSeconds)
	require.Equal(t, 1, board[0].Rank)

	require.Equal(t, "b", board[1].ParticipantID)
	require.Equal(t, 100, board[1].TotalScore)
	require.Equal(t, 2, board[1].Rank)

	require.Equal(t, "c", board[2].ParticipantID)
	require.Equal(t, 0, board[2].TotalScore)
	require.Equal(t, 3, board[2].Rank)
}

func TestBuildScoreboardTiesShareRank(t *testing.T) {
	set, participants, order, submissions := scoreboardFixture(t)
	// Give c a correct answer on question 1 so b and c tie at 100.
	submissions[1]["c"] = &domain.Submission{ParticipantID: "c", Value: "o2", SubmittedAtOffsetSeconds: 1}
	board := buildScoreboard(set, participants, order, submissions, 100)

	require.Equal(t, 1, board[0].Rank)
	require.Equal(t, 2, board[1].Rank)
	require.Equal(t, 2, board[2].Rank, "equal totals share a rank")
	// Faster total time breaks the display order inside the tie.
	require.Equal(t, "c", board[1].ParticipantID)
	require.Equal(t, "b", board[2].ParticipantID)
}

func TestBuildScoreboardIsIdempotent(t *testing.T) {
	set, participants, order, submissions := scoreboardFixture(t)
	first := buildScoreboard(set, participants, order, submissions, 100)
	second := buildScoreboard(set, participants, order, submissions, 100)
	require.Equal(t, first, second)
}

func TestBuildScoreboardSkipsRemovedParticipants(t *testing.T) {
	set, participants, order, submissions := scoreboardFixture(t)
	delete(participants, "b")
	board := buildScoreboard(set, participants, order, submissions, 100)

	require.Len(t, board, 2)
	for _, entry := range board {
		require.NotEqual(t, "b", entry.ParticipantID)
	}
}
