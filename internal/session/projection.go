package session

import (
	"livequiz-service/internal/domain"
)

// buildSnapshot assembles the viewer projection from loop-owned state. Only
// the run loop calls it, so the snapshot is always consistent.
func (s *Session) buildSnapshot() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:     s.id,
		RoomCode:      s.roomCode,
		QuizTitle:     s.quiz.Title,
		Phase:         s.phase,
		QuestionIndex: s.index,
		QuestionCount: s.questions.Count(),
		TimeRemaining: s.remaining,
		Participants:  s.participantViews(),
		ResponseCount: s.answeredCount(s.index),
		UpdatedAt:     s.cfg.Now(),
	}
	revealed := s.phase == domain.PhaseReveal || s.phase == domain.PhaseEnded
	if s.phase != domain.PhaseLobby {
		question := s.questions.At(s.index)
		snap.TimeLimit = question.TimeLimitSeconds
		snap.Question = questionView(question, revealed)
	}
	if revealed {
		if dist, ok := s.distributions[s.index]; ok {
			snap.Distribution = dist
		}
		snap.Scoreboard = buildScoreboard(s.questions, s.participants, s.order, s.submissions, s.cfg.BasePoints)
	}
	return snap
}

// broadcast publishes a fresh snapshot to every subscriber without blocking
// on slow consumers; a stale pending update is dropped in favor of the new one.
func (s *Session) broadcast() {
	snap := s.buildSnapshot()
	s.latest.Store(snap)
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) participantViews() []domain.ParticipantView {
	views := make([]domain.ParticipantView, 0, len(s.order))
	for _, id := range s.order {
		p, ok := s.participants[id]
		if !ok {
			continue
		}
		_, answered := s.submissions[s.index][id]
		views = append(views, domain.ParticipantView{
			ID:               p.ID,
			DisplayName:      p.DisplayName,
			ConnectionStatus: p.ConnectionStatus,
			HasAnswered:      answered,
		})
	}
	return views
}

// questionView strips answer keys from the question until reveal so a player
// client can never read correct flags off the wire mid-question.
func questionView(q domain.Question, revealed bool) *domain.QuestionView {
	view := &domain.QuestionView{
		ID:               q.ID,
		Text:             q.Text,
		Type:             q.Type,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
	for _, opt := range q.Options {
		view.Options = append(view.Options, domain.Option{ID: opt.ID, Text: opt.Text, Correct: revealed && opt.Correct})
	}
	if revealed {
		view.CorrectAnswer = q.CorrectAnswer
		view.Explanation = q.Explanation
	}
	return view
}
