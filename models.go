package pdfquiz

import "fmt"

// FileRecord represents one uploaded document and its derived-artifact
// readiness flags as reported by the backend
type FileRecord struct {
	FileID        string `json:"file_id"`
	Filename      string `json:"filename"`
	ContentLength int64  `json:"content_length"`
	HasSummary    bool   `json:"has_summary"`
	HasQuiz       bool   `json:"has_quiz"`
}

// ArtifactKind identifies a generated artifact derived from an uploaded PDF
type ArtifactKind string

const (
	ArtifactSummary ArtifactKind = "summary"
	ArtifactQuiz    ArtifactKind = "quiz"
)

// QuizDocument represents a complete generated quiz
type QuizDocument struct {
	QuizTitle string         `json:"quiz_title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion represents a single multiple choice question
type QuizQuestion struct {
	QuestionID      int          `json:"question_id"`
	Question        string       `json:"question"`
	Options         []QuizOption `json:"options"`
	CorrectOptionID int          `json:"correct_option_id"`
}

// QuizOption represents one answer choice of a question
type QuizOption struct {
	OptionID int    `json:"option_id"`
	Option   string `json:"option"`
}

// OptionByID returns the option with the given id, if the question has one.
func (q QuizQuestion) OptionByID(optionID int) (QuizOption, bool) {
	for _, opt := range q.Options {
		if opt.OptionID == optionID {
			return opt, true
		}
	}
	return QuizOption{}, false
}

// CorrectOption returns the option marked correct. The document must have
// passed Validate for this to be meaningful.
func (q QuizQuestion) CorrectOption() QuizOption {
	opt, _ := q.OptionByID(q.CorrectOptionID)
	return opt
}

// Validate checks the invariants a playable quiz must satisfy: at least one
// question, every question at least one option, and exactly one option per
// question matching correct_option_id.
func (d *QuizDocument) Validate() error {
	if len(d.Questions) == 0 {
		return &DataError{Reason: "quiz has no questions"}
	}
	for i, q := range d.Questions {
		if len(q.Options) == 0 {
			return &DataError{Reason: fmt.Sprintf("question %d has no options", i+1)}
		}
		matches := 0
		for _, opt := range q.Options {
			if opt.OptionID == q.CorrectOptionID {
				matches++
			}
		}
		if matches != 1 {
			return &DataError{Reason: fmt.Sprintf("question %d has %d options matching correct_option_id %d", i+1, matches, q.CorrectOptionID)}
		}
	}
	return nil
}
