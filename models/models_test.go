package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validMCQ() Question {
	return Question{
		Kind:             KindMCQ,
		Prompt:           "Capital of France?",
		CorrectAnswer:    "Paris",
		Points:           1,
		TimeLimitSeconds: 30,
		Choices: []Choice{
			{Text: "Paris", IsCorrect: true},
			{Text: "London"},
			{Text: "Berlin"},
		},
	}
}

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Question)
		wantErr string
	}{
		{"valid mcq", func(q *Question) {}, ""},
		{"unknown kind", func(q *Question) { q.Kind = "matching" }, "unknown question kind"},
		{"empty prompt", func(q *Question) { q.Prompt = "   " }, "prompt is required"},
		{"empty correct answer", func(q *Question) { q.CorrectAnswer = "" }, "correct answer is required"},
		{"zero points", func(q *Question) { q.Points = 0 }, "points must be a positive"},
		{"negative time limit", func(q *Question) { q.TimeLimitSeconds = -1 }, "time limit must be a positive"},
		{"single choice", func(q *Question) { q.Choices = q.Choices[:1] }, "at least 2 choices"},
		{"answer matches no choice", func(q *Question) { q.CorrectAnswer = "Rome" }, "exactly one choice"},
		{"answer matches two choices", func(q *Question) {
			q.Choices = append(q.Choices, Choice{Text: "paris"})
		}, "matched 2"},
		{"no flagged choice", func(q *Question) { q.Choices[0].IsCorrect = false }, "flagged correct"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validMCQ()
			tc.mutate(&q)
			err := q.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestQuestionValidateTrueFalse(t *testing.T) {
	q := Question{
		Kind:             KindTrueFalse,
		Prompt:           "Is water wet?",
		CorrectAnswer:    "True",
		Points:           1,
		TimeLimitSeconds: 30,
		Choices: []Choice{
			{Text: "True", IsCorrect: true},
			{Text: "False"},
		},
	}
	assert.NoError(t, q.Validate())

	lowercase := q
	lowercase.CorrectAnswer = "true"
	assert.ErrorContains(t, lowercase.Validate(), "must be True or False")

	missingChoices := q
	missingChoices.Choices = nil
	assert.ErrorContains(t, missingChoices.Validate(), "True and False choices")
}

func TestQuestionValidateTextKinds(t *testing.T) {
	for _, kind := range []QuestionKind{KindText, KindFillBlank} {
		q := Question{Kind: kind, Prompt: "Symbol for gold?", CorrectAnswer: "Au", Points: 1, TimeLimitSeconds: 30}
		assert.NoError(t, q.Validate(), string(kind))

		withChoices := q
		withChoices.Choices = []Choice{{Text: "Au", IsCorrect: true}}
		assert.ErrorContains(t, withChoices.Validate(), "must not carry choices")
	}
}

func TestCorrectChoiceText(t *testing.T) {
	q := validMCQ()
	assert.Equal(t, "Paris", q.CorrectChoiceText())

	q.Choices[0].IsCorrect = false
	assert.Equal(t, "", q.CorrectChoiceText())
}

func TestQuestionKindHelpers(t *testing.T) {
	assert.True(t, KindMCQ.Valid())
	assert.True(t, KindFillBlank.Valid())
	assert.False(t, QuestionKind("essay").Valid())

	assert.True(t, KindMCQ.HasChoices())
	assert.True(t, KindTrueFalse.HasChoices())
	assert.False(t, KindText.HasChoices())
	assert.False(t, KindFillBlank.HasChoices())
}
