package session

import (
	"sort"
	"strings"

	"livequiz-service/internal/domain"
)

// Evaluate reports whether value is a correct answer to the question.
// Multiple choice compares option IDs, true/false compares case-insensitively,
// and short answers use keyword containment: the text must mention at least
// half of the question's keywords (rounded up). The short-answer rule is a
// documented heuristic, not exact matching.
func Evaluate(q domain.Question, value string) bool {
	switch q.Type {
	case domain.MultipleChoice:
		for _, opt := range q.Options {
			if opt.Correct {
				return opt.ID == value
			}
		}
		return false
	case domain.TrueFalse:
		return strings.EqualFold(strings.TrimSpace(value), q.CorrectAnswer)
	case domain.ShortAnswer:
		if len(q.Keywords) == 0 {
			return false
		}
		text := strings.ToLower(value)
		hits := 0
		for _, kw := range q.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				hits++
			}
		}
		return hits >= (len(q.Keywords)+1)/2
	default:
		return false
	}
}

// scoreQuestion fills in the derived Correct/ScoreDelta fields on every
// submission for one question. Called exactly once, on reveal entry.
func scoreQuestion(q domain.Question, subs map[string]*domain.Submission, basePoints int) {
	for _, sub := range subs {
		sub.Correct = Evaluate(q, sub.Value)
		if sub.Correct {
			sub.ScoreDelta = basePoints
		}
	}
}

// buildDistribution aggregates all submissions for a revealed question into
// per-bucket counts and percentages. Buckets are option IDs for multiple
// choice, "true"/"false" for true/false, and "correct"/"incorrect" for short
// answers. notAnswered counts current participants without a submission,
// distinct from incorrect.
func buildDistribution(q domain.Question, index int, subs map[string]*domain.Submission, answered, participantCount int) *domain.AnswerDistribution {
	dist := &domain.AnswerDistribution{
		QuestionIndex: index,
		ResponseCount: len(subs),
		NotAnswered:   participantCount - answered,
	}
	counts := make(map[string]int)
	for _, sub := range subs {
		counts[bucketKey(q, sub)]++
	}
	for _, b := range bucketLayout(q) {
		b.Count = counts[b.Key]
		if dist.ResponseCount > 0 {
			b.Percentage = b.Count * 100 / dist.ResponseCount
		}
		dist.Buckets = append(dist.Buckets, b)
	}
	return dist
}

func bucketKey(q domain.Question, sub *domain.Submission) string {
	switch q.Type {
	case domain.MultipleChoice:
		return sub.Value
	case domain.TrueFalse:
		return strings.ToLower(strings.TrimSpace(sub.Value))
	default:
		if sub.Correct {
			return "correct"
		}
		return "incorrect"
	}
}

func bucketLayout(q domain.Question) []domain.DistributionBucket {
	switch q.Type {
	case domain.MultipleChoice:
		buckets := make([]domain.DistributionBucket, 0, len(q.Options))
		for _, opt := range q.Options {
			buckets = append(buckets, domain.DistributionBucket{Key: opt.ID, Text: opt.Text, Correct: opt.Correct})
		}
		return buckets
	case domain.TrueFalse:
		truth := strings.ToLower(q.CorrectAnswer)
		return []domain.DistributionBucket{
			{Key: "true", Text: "True", Correct: truth == "true"},
			{Key: "false", Text: "False", Correct: truth == "false"},
		}
	default:
		return []domain.DistributionBucket{
			{Key: "correct", Text: "Correct", Correct: true},
			{Key: "incorrect", Text: "Incorrect"},
		}
	}
}

// buildScoreboard recomputes the ranking from the full submission history.
// It is a pure function of (roster, history): correctness is re-evaluated
// from the answer keys rather than trusting cached deltas, so recomputing
// twice always yields identical boards. Rank is standard competition ranking:
// 1 plus the number of participants with a strictly greater total.
func buildScoreboard(questions domain.QuestionSet, participants map[string]*domain.Participant, order []string, submissions map[int]map[string]*domain.Submission, basePoints int) []domain.ScoreboardEntry {
	entries := make([]domain.ScoreboardEntry, 0, len(order))
	for _, id := range order {
		p, ok := participants[id]
		if !ok {
			continue
		}
		entry := domain.ScoreboardEntry{ParticipantID: p.ID, DisplayName: p.DisplayName}
		for i := 0; i < questions.Count(); i++ {
			sub, ok := submissions[i][id]
			if !ok {
				continue
			}
			entry.TotalTimeSpentSeconds += sub.SubmittedAtOffsetSeconds
			if Evaluate(questions.At(i), sub.Value) {
				entry.CorrectCount++
				entry.TotalScore += basePoints
			}
		}
		entries = append(entries, entry)
	}

	// Score descending, faster totals first on ties, then join order (the
	// slice already follows join order, so the sort is kept stable).
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].TotalTimeSpentSeconds < entries[j].TotalTimeSpentSeconds
	})
	for i := range entries {
		rank := 1
		for j := range entries {
			if entries[j].TotalScore > entries[i].TotalScore {
				rank++
			}
		}
		entries[i].Rank = rank
	}
	return entries
}
