package domain

import "time"

// Phase is the discrete state of a session's progression.
type Phase string

const (
	// PhaseLobby accepts joins before the host starts the quiz.
	PhaseLobby Phase = "lobby"
	// PhaseQuestionOpen accepts submissions for the current question.
	PhaseQuestionOpen Phase = "question_open"
	// PhasePaused is a host-triggered sub-state of an open question; the
	// timer is frozen and submissions are blocked.
	PhasePaused Phase = "paused"
	// PhaseReveal shows the correct answer and distribution; submissions closed.
	PhaseReveal Phase = "reveal"
	// PhaseEnded is terminal.
	PhaseEnded Phase = "ended"
)

// ConnectionStatus tracks a participant's transport state.
type ConnectionStatus string

const (
	Connecting   ConnectionStatus = "connecting"
	Connected    ConnectionStatus = "connected"
	Disconnected ConnectionStatus = "disconnected"
)

// Participant represents one joined player.
type Participant struct {
	ID               string           `json:"id"`
	DisplayName      string           `json:"displayName"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
	JoinedAt         time.Time        `json:"joinedAt"`
}

// Submission is the permanent audit record of one answer. Exactly one exists
// per (participant, question index); it is never mutated after scoring.
type Submission struct {
	ParticipantID            string `json:"participantId"`
	QuestionIndex            int    `json:"questionIndex"`
	Value                    string `json:"value"`
	SubmittedAtOffsetSeconds int    `json:"submittedAtOffsetSeconds"`
	Correct                  bool   `json:"correct"`
	ScoreDelta               int    `json:"scoreDelta"`
}

// ScoreboardEntry is a derived ranking row, recomputed from the full
// submission history whenever a ranking projection is requested.
type ScoreboardEntry struct {
	ParticipantID         string `json:"participantId"`
	DisplayName           string `json:"displayName"`
	TotalScore            int    `json:"totalScore"`
	CorrectCount          int    `json:"correctCount"`
	TotalTimeSpentSeconds int    `json:"totalTimeSpentSeconds"`
	Rank                  int    `json:"rank"`
}

// DistributionBucket counts submissions for one answer bucket. For multiple
// choice the key is the option ID; for true/false it is "true"/"false"; for
// short answer the buckets are "correct" and "incorrect".
type DistributionBucket struct {
	Key        string `json:"key"`
	Text       string `json:"text,omitempty"`
	Correct    bool   `json:"correct"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// AnswerDistribution aggregates responses for one revealed question.
type AnswerDistribution struct {
	QuestionIndex int                  `json:"questionIndex"`
	Buckets       []DistributionBucket `json:"buckets"`
	ResponseCount int                  `json:"responseCount"`
	NotAnswered   int                  `json:"notAnswered"`
}

// ParticipantView is the per-participant slice of a projection.
type ParticipantView struct {
	ID               string           `json:"id"`
	DisplayName      string           `json:"displayName"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
	HasAnswered      bool             `json:"hasAnswered"`
}

// QuestionView is the question as shown to viewers. Correct answers and the
// explanation are withheld until the question is revealed.
type QuestionView struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	Options          []Option     `json:"options,omitempty"`
	CorrectAnswer    string       `json:"correctAnswer,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
}

// Snapshot is the read-only projection pushed to all viewers after every
// accepted transition. Distribution and Scoreboard are populated only while
// the phase is reveal or ended.
type Snapshot struct {
	SessionID     string              `json:"sessionId"`
	RoomCode      string              `json:"roomCode"`
	QuizTitle     string              `json:"quizTitle"`
	Phase         Phase               `json:"phase"`
	QuestionIndex int                 `json:"questionIndex"`
	QuestionCount int                 `json:"questionCount"`
	Question      *QuestionView       `json:"question,omitempty"`
	TimeRemaining int                 `json:"timeRemaining"`
	TimeLimit     int                 `json:"timeLimit"`
	Participants  []ParticipantView   `json:"participants"`
	ResponseCount int                 `json:"responseCount"`
	Distribution  *AnswerDistribution `json:"distribution,omitempty"`
	Scoreboard    []ScoreboardEntry   `json:"scoreboard,omitempty"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
