package domain

import "errors"

var (
	// ErrInvalidQuestionSet is returned when quiz content fails validation on ingestion.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrRoomNotFound is returned when a room code does not match a live session.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomClosed is returned when joining a session that has already ended.
	ErrRoomClosed = errors.New("room is closed")
	// ErrSessionEnded is returned for any command issued after the session ended.
	ErrSessionEnded = errors.New("session has ended")
	// ErrInvalidTransition is returned when a command is not valid in the current phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrDuplicateSubmission is returned when a participant answers the same question twice.
	ErrDuplicateSubmission = errors.New("answer already submitted for this question")
	// ErrNotAcceptingAnswers is returned for submissions outside an open question window.
	ErrNotAcceptingAnswers = errors.New("session is not accepting answers")
	// ErrParticipantNotFound is returned when a participant ID is unknown to the session.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInternalInvariant signals a should-never-happen state; the session is forced to end.
	ErrInternalInvariant = errors.New("internal session invariant violated")
)
