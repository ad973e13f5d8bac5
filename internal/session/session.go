package session

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// Config holds per-session tunables.
type Config struct {
	// BasePoints is the fixed score awarded per correct answer.
	BasePoints int
	// TickInterval is the countdown granularity. One second in production;
	// tests shrink it for speed.
	TickInterval time.Duration
	// Now is the clock source, injectable for deterministic tests.
	Now func() time.Time
	// QueueSize bounds the event queue.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.BasePoints <= 0 {
		c.BasePoints = 100
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	return c
}

// Session is the live coordinator for one quiz room. A single run-loop
// goroutine owns all mutable state and consumes the event queue; every public
// method posts a command and waits for the loop's reply.
type Session struct {
	id        string
	roomCode  string
	quiz      domain.Quiz
	questions domain.QuestionSet
	cfg       Config
	createdAt time.Time

	events chan envelope
	done   chan struct{}
	latest atomic.Value // domain.Snapshot

	// Everything below is owned by the run loop.
	phase         domain.Phase
	index         int
	remaining     int
	timerGen      int
	participants  map[string]*domain.Participant
	order         []string
	submissions   map[int]map[string]*domain.Submission
	distributions map[int]*domain.AnswerDistribution
	subscribers   map[chan domain.Snapshot]struct{}
}

func newSession(id, roomCode string, quiz domain.Quiz, questions domain.QuestionSet, cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		id:            id,
		roomCode:      roomCode,
		quiz:          quiz,
		questions:     questions,
		cfg:           cfg,
		createdAt:     cfg.Now(),
		events:        make(chan envelope, cfg.QueueSize),
		done:          make(chan struct{}),
		phase:         domain.PhaseLobby,
		index:         0,
		participants:  make(map[string]*domain.Participant),
		submissions:   make(map[int]map[string]*domain.Submission),
		distributions: make(map[int]*domain.AnswerDistribution),
		subscribers:   make(map[chan domain.Snapshot]struct{}),
	}
	s.latest.Store(s.buildSnapshot())
	return s
}

// ID returns the opaque session token.
func (s *Session) ID() string { return s.id }

// RoomCode returns the human-entry join code.
func (s *Session) RoomCode() string { return s.roomCode }

// Done is closed once the session has ended and the run loop exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the latest projection. It is always taken at the loop's
// serialization point, never from partially-applied state.
func (s *Session) Snapshot() domain.Snapshot {
	return s.latest.Load().(domain.Snapshot)
}

// Start opens the first question.
func (s *Session) Start() error { return s.dispatch(startCmd{}).err }

// Pause freezes the countdown and blocks submissions.
func (s *Session) Pause() error { return s.dispatch(pauseCmd{}).err }

// Resume continues the countdown from the frozen remaining time.
func (s *Session) Resume() error { return s.dispatch(resumeCmd{}).err }

// ForceReveal closes the given question early and shows its results.
func (s *Session) ForceReveal(questionIndex int) error {
	return s.dispatch(forceRevealCmd{questionIndex: questionIndex}).err
}

// Advance moves from reveal to the next question, or ends the session after
// the last one.
func (s *Session) Advance() error { return s.dispatch(advanceCmd{}).err }

// RestartQuestion re-opens the current question, discarding its submissions.
func (s *Session) RestartQuestion() error { return s.dispatch(restartQuestionCmd{}).err }

// End terminates the session immediately from any phase.
func (s *Session) End() error { return s.dispatch(endCmd{}).err }

// Kick removes a participant. Already-recorded submissions stay in the audit
// trail but the participant drops off the scoreboard.
func (s *Session) Kick(participantID string) error {
	return s.dispatch(kickCmd{participantID: participantID}).err
}

// Join registers a new participant and returns their record.
func (s *Session) Join(displayName string) (*domain.Participant, error) {
	resp := s.dispatch(joinCmd{displayName: displayName})
	return resp.participant, resp.err
}

// Leave removes a participant at their own request.
func (s *Session) Leave(participantID string) error {
	return s.dispatch(leaveCmd{participantID: participantID}).err
}

// SubmitAnswer records one answer for the open question.
func (s *Session) SubmitAnswer(participantID string, questionIndex int, value string) error {
	return s.dispatch(submitCmd{participantID: participantID, questionIndex: questionIndex, value: value}).err
}

// SetConnectionStatus marks a participant connected or disconnected.
// Idempotent; it never touches recorded submissions.
func (s *Session) SetConnectionStatus(participantID string, status domain.ConnectionStatus) error {
	return s.dispatch(connStatusCmd{participantID: participantID, status: status}).err
}

// Subscribe returns a channel of projections, starting with the current one.
// The caller must invoke cancel to avoid leaks; after the session ends the
// channel is closed by the loop.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func(), error) {
	resp := s.dispatch(subscribeCmd{})
	if resp.err != nil {
		return nil, nil, resp.err
	}
	return resp.sub.ch, resp.sub.cancel, nil
}

// dispatch posts a command onto the event queue and waits for the reply.
// It never blocks once the session has ended.
func (s *Session) dispatch(cmd any) response {
	env := envelope{cmd: cmd, reply: make(chan response, 1)}
	select {
	case s.events <- env:
	case <-s.done:
		return response{err: domain.ErrSessionEnded}
	}
	select {
	case resp := <-env.reply:
		return resp
	case <-s.done:
		// The loop may have replied just before exiting.
		select {
		case resp := <-env.reply:
			return resp
		default:
			return response{err: domain.ErrSessionEnded}
		}
	}
}

func (s *Session) run() {
	for env := range s.events {
		env.reply <- s.handle(env.cmd)
		if s.phase == domain.PhaseEnded {
			break
		}
	}
	close(s.done)
	// Reject anything that raced into the queue.
	for {
		select {
		case env := <-s.events:
			env.reply <- response{err: domain.ErrSessionEnded}
		default:
			return
		}
	}
}

// errStaleTick tells an outdated countdown goroutine to stop. Never surfaced
// to callers.
var errStaleTick = errors.New("stale tick")

func (s *Session) handle(cmd any) response {
	switch c := cmd.(type) {
	case startCmd:
		if s.phase != domain.PhaseLobby {
			return response{err: domain.ErrInvalidTransition}
		}
		s.index = 0
		return response{err: s.openQuestion()}
	case pauseCmd:
		if s.phase != domain.PhaseQuestionOpen {
			return response{err: domain.ErrInvalidTransition}
		}
		s.phase = domain.PhasePaused
		s.broadcast()
		return response{}
	case resumeCmd:
		if s.phase != domain.PhasePaused {
			return response{err: domain.ErrInvalidTransition}
		}
		s.phase = domain.PhaseQuestionOpen
		s.broadcast()
		return response{}
	case forceRevealCmd:
		if s.phase != domain.PhaseQuestionOpen && s.phase != domain.PhasePaused {
			return response{err: domain.ErrInvalidTransition}
		}
		if c.questionIndex != s.index {
			return response{err: domain.ErrInvalidTransition}
		}
		s.enterReveal()
		return response{}
	case advanceCmd:
		if s.phase != domain.PhaseReveal {
			return response{err: domain.ErrInvalidTransition}
		}
		if s.index+1 < s.questions.Count() {
			s.index++
			return response{err: s.openQuestion()}
		}
		s.enterEnded()
		return response{}
	case restartQuestionCmd:
		switch s.phase {
		case domain.PhaseQuestionOpen, domain.PhasePaused, domain.PhaseReveal:
		default:
			return response{err: domain.ErrInvalidTransition}
		}
		delete(s.submissions, s.index)
		delete(s.distributions, s.index)
		return response{err: s.openQuestion()}
	case endCmd:
		s.enterEnded()
		return response{}
	case kickCmd:
		if _, ok := s.participants[c.participantID]; !ok {
			return response{err: domain.ErrParticipantNotFound}
		}
		s.removeParticipant(c.participantID)
		s.broadcast()
		return response{}
	case joinCmd:
		p := &domain.Participant{
			ID:               uuid.New().String(),
			DisplayName:      c.displayName,
			ConnectionStatus: domain.Connecting,
			JoinedAt:         s.cfg.Now(),
		}
		s.participants[p.ID] = p
		s.order = append(s.order, p.ID)
		s.broadcast()
		return response{participant: p}
	case leaveCmd:
		if _, ok := s.participants[c.participantID]; !ok {
			return response{err: domain.ErrParticipantNotFound}
		}
		s.removeParticipant(c.participantID)
		s.broadcast()
		return response{}
	case connStatusCmd:
		p, ok := s.participants[c.participantID]
		if !ok {
			return response{err: domain.ErrParticipantNotFound}
		}
		if p.ConnectionStatus != c.status {
			p.ConnectionStatus = c.status
			s.broadcast()
		}
		return response{}
	case submitCmd:
		return response{err: s.handleSubmit(c)}
	case tickCmd:
		return response{err: s.handleTick(c)}
	case subscribeCmd:
		ch := make(chan domain.Snapshot, 8)
		s.subscribers[ch] = struct{}{}
		ch <- s.buildSnapshot()
		cancel := func() {
			_ = s.dispatch(unsubscribeCmd{ch: ch})
		}
		return response{sub: subscription{ch: ch, cancel: cancel}}
	case unsubscribeCmd:
		if _, ok := s.subscribers[c.ch]; ok {
			delete(s.subscribers, c.ch)
			close(c.ch)
		}
		return response{}
	default:
		log.Printf("session %s: unknown command %T", s.id, cmd)
		return response{err: domain.ErrInvalidTransition}
	}
}

func (s *Session) handleSubmit(c submitCmd) error {
	switch s.phase {
	case domain.PhaseQuestionOpen:
	case domain.PhasePaused, domain.PhaseReveal, domain.PhaseLobby:
		return domain.ErrNotAcceptingAnswers
	default:
		return domain.ErrNotAcceptingAnswers
	}
	if c.questionIndex != s.index {
		return domain.ErrNotAcceptingAnswers
	}
	if _, ok := s.participants[c.participantID]; !ok {
		return domain.ErrParticipantNotFound
	}
	byParticipant, ok := s.submissions[s.index]
	if !ok {
		byParticipant = make(map[string]*domain.Submission)
		s.submissions[s.index] = byParticipant
	}
	if _, exists := byParticipant[c.participantID]; exists {
		return domain.ErrDuplicateSubmission
	}
	question := s.questions.At(s.index)
	byParticipant[c.participantID] = &domain.Submission{
		ParticipantID:            c.participantID,
		QuestionIndex:            s.index,
		Value:                    c.value,
		SubmittedAtOffsetSeconds: question.TimeLimitSeconds - s.remaining,
	}
	s.broadcast()
	return nil
}

func (s *Session) handleTick(c tickCmd) error {
	if c.gen != s.timerGen {
		return errStaleTick
	}
	switch s.phase {
	case domain.PhasePaused:
		// Frozen; keep the countdown goroutine alive for resume.
		return nil
	case domain.PhaseQuestionOpen:
	default:
		return errStaleTick
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		// Expiry never errors; reveal is the countdown's natural endpoint.
		s.enterReveal()
		return errStaleTick
	}
	s.broadcast()
	return nil
}

// openQuestion transitions to an open question at the current index and arms
// the countdown. Index range is a hard invariant; a violation force-ends the
// session rather than corrupt it.
func (s *Session) openQuestion() error {
	if s.index < 0 || s.index >= s.questions.Count() {
		log.Printf("session %s: question index %d out of range [0,%d)", s.id, s.index, s.questions.Count())
		s.enterEnded()
		return domain.ErrInternalInvariant
	}
	s.phase = domain.PhaseQuestionOpen
	s.armTimer(s.questions.At(s.index).TimeLimitSeconds)
	s.broadcast()
	return nil
}

func (s *Session) enterReveal() {
	s.phase = domain.PhaseReveal
	s.timerGen++
	question := s.questions.At(s.index)
	subs := s.submissions[s.index]
	scoreQuestion(question, subs, s.cfg.BasePoints)
	s.distributions[s.index] = buildDistribution(question, s.index, subs, s.answeredCount(s.index), len(s.participants))
	s.broadcast()
}

func (s *Session) enterEnded() {
	s.phase = domain.PhaseEnded
	s.timerGen++
	s.broadcast()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) removeParticipant(participantID string) {
	delete(s.participants, participantID)
	for i, id := range s.order {
		if id == participantID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// answeredCount counts current participants with a submission at index.
// Submissions from since-removed participants stay in the history but are not
// counted against the live roster.
func (s *Session) answeredCount(index int) int {
	n := 0
	for id := range s.participants {
		if sub, ok := s.submissions[index][id]; ok && sub != nil {
			n++
		}
	}
	return n
}
