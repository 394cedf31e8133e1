// --- quizdeck-server/scoring/scorer.go ---
package scoring

import (
	"math"

	"github.com/google/uuid"

	"quizdeck-server/models"
	"quizdeck-server/utils"
)

// Summary is the aggregated outcome of an answer set.
type Summary struct {
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`
	EarnedPoints int  `json:"earned_points"`
	TotalPoints  int  `json:"total_points"`
}

// ScoreResult is the full output of scoring one attempt, including the
// frozen answer snapshot handed to persistence.
type ScoreResult struct {
	Summary
	Answers []models.AttemptAnswer `json:"answers"`
}

// Aggregate computes the final score and verdict from a frozen answer set.
// Both ScoreAttempt and Regrade go through this single formula.
//
// Score is round(earned/total*100) clamped to [0,100]; a zero-point answer
// set scores 0, never NaN. An answer forced incorrect contributes 0 earned
// points while its Points value still counts toward the total possible.
func Aggregate(answers []models.AttemptAnswer, passingScore int) Summary {
	var earned, total int
	for _, a := range answers {
		total += a.Points
		if a.IsCorrect {
			earned += a.Points
		}
	}
	score := 0
	if total > 0 {
		score = int(math.Round(float64(earned) / float64(total) * 100))
	}
	score = utils.ClampInt(score, 0, 100)
	return Summary{
		Score:        score,
		Passed:       score >= passingScore,
		EarnedPoints: earned,
		TotalPoints:  total,
	}
}

// ScoreAttempt evaluates every submitted answer against its question,
// accumulates points, and produces the snapshot to persist. Submitted
// answers are matched to questions by question ID; a question without a
// submission is recorded as unanswered and incorrect. Submissions for
// unknown question IDs are ignored.
func ScoreAttempt(questions []models.Question, submitted []models.SubmittedAnswer, passingScore int) ScoreResult {
	byQuestion := make(map[uuid.UUID]models.SubmittedAnswer, len(submitted))
	for _, s := range submitted {
		byQuestion[s.QuestionID] = s
	}

	answers := make([]models.AttemptAnswer, 0, len(questions))
	for _, q := range questions {
		sub := byQuestion[q.ID]
		answers = append(answers, models.AttemptAnswer{
			QuestionID:       q.ID,
			QuestionText:     q.Prompt,
			StudentAnswer:    sub.RawAnswer,
			CorrectAnswer:    q.CorrectAnswer,
			Points:           q.Points,
			IsCorrect:        Evaluate(q, sub.RawAnswer),
			TimeSpentSeconds: sub.TimeSpentSeconds,
		})
	}

	return ScoreResult{
		Summary: Aggregate(answers, passingScore),
		Answers: answers,
	}
}
