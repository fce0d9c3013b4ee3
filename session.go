package pdfquiz

import (
	"errors"
	"fmt"
)

// SessionPhase is where a play-through currently stands
type SessionPhase string

const (
	PhasePresenting SessionPhase = "presenting" // question shown, no answer chosen
	PhaseRevealed   SessionPhase = "revealed"   // answer chosen, correctness shown
	PhaseFinished   SessionPhase = "finished"   // past the last question
)

// Transition errors returned by the session
var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotRevealed     = errors.New("no answer revealed yet")
	ErrSessionFinished = errors.New("session is finished")
	ErrUnknownOption   = errors.New("option does not belong to the current question")
)

// QuizSession drives a single play-through of a quiz document: present a
// question, accept exactly one answer, reveal correctness, advance, finish
// with a score. Answers always pass through the reveal phase before the
// session can advance, so a question can never be scored twice. The session
// is owned by one view at a time and every transition completes before the
// next event is processed.
type QuizSession struct {
	doc      *QuizDocument
	phase    SessionPhase
	current  int
	selected *int
	score    int
}

// NewQuizSession validates doc and starts a session at the first question
// with a zero score. A document that cannot be played (no questions, or a
// question whose correct_option_id matches no option) is refused with a
// DataError rather than producing a session in an invalid state.
func NewQuizSession(doc *QuizDocument) (*QuizSession, error) {
	if doc == nil {
		return nil, &DataError{Reason: "no quiz document"}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &QuizSession{doc: doc, phase: PhasePresenting}, nil
}

// Phase returns the session's current phase.
func (s *QuizSession) Phase() SessionPhase { return s.phase }

// CurrentIndex returns the zero-based index of the question on display.
func (s *QuizSession) CurrentIndex() int { return s.current }

// Score returns the count of correctly answered questions so far.
func (s *QuizSession) Score() int { return s.score }

// Total returns the number of questions in the quiz.
func (s *QuizSession) Total() int { return len(s.doc.Questions) }

// Title returns the quiz title.
func (s *QuizSession) Title() string { return s.doc.QuizTitle }

// Finished reports whether the session has passed the last question.
func (s *QuizSession) Finished() bool { return s.phase == PhaseFinished }

// CurrentQuestion returns the question on display. After the session
// finishes it keeps returning the last question.
func (s *QuizSession) CurrentQuestion() QuizQuestion {
	return s.doc.Questions[s.current]
}

// SelectOption records the player's answer for the current question,
// scores it, and moves the session to the reveal phase. The first choice is
// binding: once revealed, further selections for the same question are
// rejected with ErrAlreadyAnswered and the score is untouched. An option id
// that does not belong to the current question is rejected.
func (s *QuizSession) SelectOption(optionID int) error {
	switch s.phase {
	case PhaseRevealed:
		return ErrAlreadyAnswered
	case PhaseFinished:
		return ErrSessionFinished
	}

	q := s.CurrentQuestion()
	if _, ok := q.OptionByID(optionID); !ok {
		return fmt.Errorf("option %d: %w", optionID, ErrUnknownOption)
	}

	id := optionID
	s.selected = &id
	if optionID == q.CorrectOptionID {
		s.score++
	}
	s.phase = PhaseRevealed
	return nil
}

// Advance moves past the current question once its answer has been
// revealed. After the last question the session finishes; otherwise the
// next question is presented with the selection cleared.
func (s *QuizSession) Advance() error {
	switch s.phase {
	case PhasePresenting:
		return ErrNotRevealed
	case PhaseFinished:
		return ErrSessionFinished
	}

	if s.current+1 < len(s.doc.Questions) {
		s.current++
		s.selected = nil
		s.phase = PhasePresenting
		return nil
	}
	s.phase = PhaseFinished
	return nil
}

// Restart resets the session to the first question with a zero score. Valid
// from any phase; restarting a fresh session changes nothing.
func (s *QuizSession) Restart() {
	s.current = 0
	s.score = 0
	s.selected = nil
	s.phase = PhasePresenting
}

// SelectedOption returns the option chosen for the current question, if one
// has been recorded.
func (s *QuizSession) SelectedOption() (QuizOption, bool) {
	if s.selected == nil {
		return QuizOption{}, false
	}
	return s.CurrentQuestion().OptionByID(*s.selected)
}

// IsCorrect reports whether the revealed answer was right. A reveal with no
// recorded selection counts as incorrect, never as undefined.
func (s *QuizSession) IsCorrect() bool {
	if s.phase != PhaseRevealed || s.selected == nil {
		return false
	}
	return *s.selected == s.CurrentQuestion().CorrectOptionID
}

// CorrectOption returns the correct option for the current question. It is
// answerable whenever a question is on display, whether or not the player
// selected anything, so the reveal can always show the right answer's text.
func (s *QuizSession) CorrectOption() QuizOption {
	return s.CurrentQuestion().CorrectOption()
}

// SessionState is the serializable snapshot of a play-through, small enough
// for cookie storage. The quiz document itself is not part of the snapshot;
// it is re-fetched through the idempotent generate endpoint on resume.
type SessionState struct {
	Phase          SessionPhase `json:"phase"`
	CurrentIndex   int          `json:"current_index"`
	SelectedOption int          `json:"selected_option"`
	HasSelection   bool         `json:"has_selection"`
	Score          int          `json:"score"`
}

// Snapshot captures the session's current state.
func (s *QuizSession) Snapshot() SessionState {
	state := SessionState{
		Phase:        s.phase,
		CurrentIndex: s.current,
		Score:        s.score,
	}
	if s.selected != nil {
		state.SelectedOption = *s.selected
		state.HasSelection = true
	}
	return state
}

// ResumeQuizSession rebuilds a session from a snapshot taken against the
// same document. A snapshot that does not fit the document (index out of
// range, score out of range, a selection the question does not have) is
// refused with a DataError.
func ResumeQuizSession(doc *QuizDocument, state SessionState) (*QuizSession, error) {
	s, err := NewQuizSession(doc)
	if err != nil {
		return nil, err
	}
	if state.CurrentIndex < 0 || state.CurrentIndex >= len(doc.Questions) {
		return nil, &DataError{Reason: fmt.Sprintf("question index %d out of range", state.CurrentIndex)}
	}
	if state.Score < 0 || state.Score > len(doc.Questions) {
		return nil, &DataError{Reason: fmt.Sprintf("score %d out of range", state.Score)}
	}
	switch state.Phase {
	case PhasePresenting, PhaseRevealed, PhaseFinished:
	default:
		return nil, &DataError{Reason: fmt.Sprintf("unknown session phase %q", state.Phase)}
	}

	s.phase = state.Phase
	s.current = state.CurrentIndex
	s.score = state.Score
	if state.HasSelection {
		if _, ok := s.CurrentQuestion().OptionByID(state.SelectedOption); !ok {
			return nil, &DataError{Reason: fmt.Sprintf("selected option %d does not belong to question %d", state.SelectedOption, state.CurrentIndex+1)}
		}
		id := state.SelectedOption
		s.selected = &id
	}
	return s, nil
}
