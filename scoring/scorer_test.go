package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizdeck-server/models"
)

func TestAggregate(t *testing.T) {
	cases := []struct {
		name         string
		answers      []models.AttemptAnswer
		passingScore int
		wantScore    int
		wantPassed   bool
		wantEarned   int
		wantTotal    int
	}{
		{
			name:         "no answers scores zero",
			answers:      nil,
			passingScore: 70,
		},
		{
			name: "all correct",
			answers: []models.AttemptAnswer{
				{Points: 2, IsCorrect: true},
				{Points: 3, IsCorrect: true},
			},
			passingScore: 70,
			wantScore:    100, wantPassed: true, wantEarned: 5, wantTotal: 5,
		},
		{
			name: "half right rounds",
			answers: []models.AttemptAnswer{
				{Points: 1, IsCorrect: true},
				{Points: 2, IsCorrect: false},
			},
			passingScore: 33,
			wantScore:    33, wantPassed: true, wantEarned: 1, wantTotal: 3,
		},
		{
			name: "rounds up at half",
			answers: []models.AttemptAnswer{
				{Points: 1, IsCorrect: true},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
				{Points: 1, IsCorrect: false},
			},
			passingScore: 13,
			wantScore:    13, wantPassed: true, wantEarned: 1, wantTotal: 8,
		},
		{
			name: "exactly at passing score passes",
			answers: []models.AttemptAnswer{
				{Points: 7, IsCorrect: true},
				{Points: 3, IsCorrect: false},
			},
			passingScore: 70,
			wantScore:    70, wantPassed: true, wantEarned: 7, wantTotal: 10,
		},
		{
			name: "one below passing score fails",
			answers: []models.AttemptAnswer{
				{Points: 69, IsCorrect: true},
				{Points: 31, IsCorrect: false},
			},
			passingScore: 70,
			wantScore:    69, wantEarned: 69, wantTotal: 100,
		},
		{
			name: "zero total points scores zero",
			answers: []models.AttemptAnswer{
				{Points: 0, IsCorrect: true},
				{Points: 0, IsCorrect: true},
			},
			passingScore: 70,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(tc.answers, tc.passingScore)
			assert.Equal(t, tc.wantScore, got.Score)
			assert.Equal(t, tc.wantPassed, got.Passed)
			assert.Equal(t, tc.wantEarned, got.EarnedPoints)
			assert.Equal(t, tc.wantTotal, got.TotalPoints)
		})
	}
}

func TestScoreAttempt(t *testing.T) {
	q1 := mcqQuestion("Paris", "Paris", "London", "Berlin")
	q1.ID = uuid.New()
	q2 := mcqQuestion("Jupiter", "Jupiter", "Mars", "Venus")
	q2.ID = uuid.New()
	questions := []models.Question{q1, q2}

	submitted := []models.SubmittedAnswer{
		{QuestionID: q1.ID, RawAnswer: "Paris", TimeSpentSeconds: 12},
		{QuestionID: q2.ID, RawAnswer: "Mars", TimeSpentSeconds: 20},
	}

	result := ScoreAttempt(questions, submitted, 70)

	assert.Equal(t, 50, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.EarnedPoints)
	assert.Equal(t, 2, result.TotalPoints)

	require.Len(t, result.Answers, 2)
	first := result.Answers[0]
	assert.Equal(t, q1.ID, first.QuestionID)
	assert.Equal(t, "Q?", first.QuestionText)
	assert.Equal(t, "Paris", first.StudentAnswer)
	assert.Equal(t, "Paris", first.CorrectAnswer)
	assert.True(t, first.IsCorrect)
	assert.Equal(t, 12, first.TimeSpentSeconds)

	second := result.Answers[1]
	assert.Equal(t, "Mars", second.StudentAnswer)
	assert.False(t, second.IsCorrect)
	assert.Equal(t, 20, second.TimeSpentSeconds)
}

func TestScoreAttemptUnansweredQuestions(t *testing.T) {
	q1 := mcqQuestion("A", "A", "B")
	q1.ID = uuid.New()
	q2 := mcqQuestion("C", "C", "D")
	q2.ID = uuid.New()

	// Only the first question is answered; a submission for an unknown
	// question ID must not create an extra answer row.
	submitted := []models.SubmittedAnswer{
		{QuestionID: q1.ID, RawAnswer: "A"},
		{QuestionID: uuid.New(), RawAnswer: "C"},
	}

	result := ScoreAttempt([]models.Question{q1, q2}, submitted, 70)

	require.Len(t, result.Answers, 2)
	assert.True(t, result.Answers[0].IsCorrect)
	assert.False(t, result.Answers[1].IsCorrect)
	assert.Equal(t, "", result.Answers[1].StudentAnswer)
	assert.Equal(t, 50, result.Score)
}

func TestScoreAttemptNoQuestions(t *testing.T) {
	result := ScoreAttempt(nil, nil, 70)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
	assert.Empty(t, result.Answers)
}
