
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionKind is the closed set of supported question types.
type QuestionKind string

const (
	KindMCQ       QuestionKind = "mcq"
	KindTrueFalse QuestionKind = "true_false"
	KindText      QuestionKind = "text"
	KindFillBlank QuestionKind = "fill_blank"
)

// Valid reports whether k is one of the four recognized kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindMCQ, KindTrueFalse, KindText, KindFillBlank:
		return true
	default:
		return false
	}
}

// HasChoices reports whether questions of this kind carry a choice list.
func (k QuestionKind) HasChoices() bool {
	return k == KindMCQ || k == KindTrueFalse
}

// Choice represents one answer option for an MCQ or true/false question.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is the canonical authored representation of a single question.
// Question IDs are issued at authoring time and carried through submission,
// scoring, regrading, and analytics, so reordering a quiz never corrupts
// historical results.
type Question struct {
	ID               uuid.UUID    `json:"id"`
	QuizID           int          `json:"quiz_id,omitempty"`
	Position         int          `json:"position"`
	Kind             QuestionKind `json:"kind"`
	Prompt           string       `json:"prompt"`
	Choices          []Choice     `json:"choices,omitempty"`
	CorrectAnswer    string       `json:"correct_answer"`
	Points           int          `json:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds"`
	Explanation      string       `json:"explanation,omitempty"`
	Category         string       `json:"category,omitempty"`
	Difficulty       string       `json:"difficulty,omitempty"`
}

// Validate checks the structural invariants of a question. The bulk parser
// enforces the same rules field by field with row context; this is the gate
// for questions arriving through the manual builder.
func (q Question) Validate() error {
	if !q.Kind.Valid() {
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("correct answer is required")
	}
	if q.Points <= 0 {
		return fmt.Errorf("points must be a positive integer")
	}
	if q.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time limit must be a positive integer")
	}
	switch q.Kind {
	case KindMCQ:
		if len(q.Choices) < 2 {
			return fmt.Errorf("multiple choice questions require at least 2 choices")
		}
		matches, flagged := 0, 0
		for _, c := range q.Choices {
			if strings.EqualFold(c.Text, q.CorrectAnswer) {
				matches++
			}
			if c.IsCorrect {
				flagged++
			}
		}
		if matches != 1 {
			return fmt.Errorf("correct answer must match exactly one choice, matched %d", matches)
		}
		if flagged != 1 {
			return fmt.Errorf("exactly one choice must be flagged correct, found %d", flagged)
		}
	case KindTrueFalse:
		if len(q.Choices) != 2 {
			return fmt.Errorf("true/false questions require exactly the True and False choices")
		}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return fmt.Errorf("true/false correct answer must be True or False")
		}
	case KindText, KindFillBlank:
		if len(q.Choices) != 0 {
			return fmt.Errorf("%s questions must not carry choices", q.Kind)
		}
	}
	return nil
}

// CorrectChoiceText returns the text of the choice flagged correct, or ""
// when the question has no flagged choice.
func (q Question) CorrectChoiceText() string {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.Text
		}
	}
	return ""
}

// Quiz groups questions under a title and passing threshold.
type Quiz struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	PassingScore int        `json:"passing_score"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Questions    []Question `json:"questions,omitempty"`
	AttemptCount int        `json:"attempt_count,omitempty"` // For API responses
}

// SubmittedAnswer is one raw answer from an in-progress attempt. It exists
// only between submission and scoring; the persisted record is AttemptAnswer.
type SubmittedAnswer struct {
	QuestionID       uuid.UUID `json:"question_id"`
	RawAnswer        string    `json:"answer"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// AttemptAnswer is the frozen per-question snapshot stored with an attempt.
// It is deliberately decoupled from the live Question row so later quiz edits
// never alter historical attempts.
type AttemptAnswer struct {
	QuestionID       uuid.UUID `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	StudentAnswer    string    `json:"student_answer"`
	CorrectAnswer    string    `json:"correct_answer"`
	Points           int       `json:"points"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// Attempt is one learner's completed submission against a quiz.
type Attempt struct {
	ID              int             `json:"id"`
	PublicID        uuid.UUID       `json:"public_id"`
	QuizID          int             `json:"quiz_id"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
	Score           int             `json:"score"`
	Passed          bool            `json:"passed"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         time.Time       `json:"ended_at"`
	DurationSeconds int             `json:"duration_seconds"`
	Answers         []AttemptAnswer `json:"answers,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AttemptSubmissionRequest is the learner submission payload.
type AttemptSubmissionRequest struct {
	UserName  string            `json:"user_name"`
	UserEmail string            `json:"user_email"`
	StartedAt time.Time         `json:"started_at" binding:"required"`
	EndedAt   time.Time         `json:"ended_at" binding:"required"`
	Answers   []SubmittedAnswer `json:"answers" binding:"required"`
}

// RegradeOverride forces a stored answer's correctness by index.
type RegradeOverride struct {
	AnswerIndex int  `json:"answer_index"`
	IsCorrect   bool `json:"is_correct"`
}

// RegradeRequest is the admin regrade payload.
type RegradeRequest struct {
	Overrides []RegradeOverride `json:"overrides" binding:"required"`
}

// AdminQuizCreateRequest is the manual-builder payload.
type AdminQuizCreateRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	PassingScore int        `json:"passing_score"`
	Questions    []Question `json:"questions" binding:"required"`
}

// UploadResult is returned from the bulk upload endpoint.
type UploadResult struct {
	QuizID        int      `json:"quiz_id,omitempty"`
	QuestionCount int      `json:"question_count"`
	Errors        []string `json:"errors,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ErrorLog represents an entry in the error_logs table.
type ErrorLog struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	QuizRef      string    `json:"quiz_ref"`
	RowNumber    *int      `json:"row_number"`
	FieldName    *string   `json:"field_name"`
	ErrorMessage string    `json:"error_message"`
	SuggestedFix *string   `json:"suggested_fix"`
}

// Setting represents an entry in the settings table.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// QuizYAML describes the quiz.yaml metadata file of a quiz bundle.
type QuizYAML struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	PassingScore int    `yaml:"passing_score"`
	Category     string `yaml:"category"`
	Difficulty   string `yaml:"difficulty"`
}
