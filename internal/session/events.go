package session

import (
	"livequiz-service/internal/domain"
)

// envelope carries one command into the session's event queue together with
// its reply channel. The run loop is the only consumer; processing one
// envelope at a time is what serializes all host, participant, and timer
// activity on a session.
type envelope struct {
	cmd   any
	reply chan response
}

type response struct {
	participant *domain.Participant
	sub         subscription
	err         error
}

type subscription struct {
	ch     chan domain.Snapshot
	cancel func()
}

// Host commands.
type (
	startCmd           struct{}
	pauseCmd           struct{}
	resumeCmd          struct{}
	forceRevealCmd     struct{ questionIndex int }
	advanceCmd         struct{}
	restartQuestionCmd struct{}
	endCmd             struct{}
	kickCmd            struct{ participantID string }
)

// Participant commands.
type (
	joinCmd struct {
		displayName string
	}
	leaveCmd struct {
		participantID string
	}
	submitCmd struct {
		participantID string
		questionIndex int
		value         string
	}
	connStatusCmd struct {
		participantID string
		status        domain.ConnectionStatus
	}
)

// Projection commands.
type (
	subscribeCmd   struct{}
	unsubscribeCmd struct {
		ch chan domain.Snapshot
	}
)

// tickCmd is injected by the countdown goroutine. It travels through the same
// queue as every other command, so a submission enqueued ahead of the final
// tick is processed first; the queue, not the wall clock, is authoritative.
type tickCmd struct {
	gen int
}
