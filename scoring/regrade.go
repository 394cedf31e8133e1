// --- quizdeck-server/scoring/regrade.go ---
package scoring

import (
	"fmt"
	"time"

	"quizdeck-server/models"
)

// Regrade applies manual correctness overrides to a stored attempt and
// recomputes its score and verdict through Aggregate. The input attempt is
// not mutated; a regraded copy is returned.
//
// Overrides toggle IsCorrect only. Points values on the stored answers are
// never altered, so the total possible points of the attempt stays correct.
// Start/end times and duration are untouched; UpdatedAt is bumped.
//
// Validation is all-or-nothing: any out-of-range override index rejects the
// whole request before a single override is applied.
func Regrade(attempt models.Attempt, overrides []models.RegradeOverride, passingScore int) (models.Attempt, error) {
	for _, o := range overrides {
		if o.AnswerIndex < 0 || o.AnswerIndex >= len(attempt.Answers) {
			return models.Attempt{}, fmt.Errorf("override index %d out of range, attempt has %d answers",
				o.AnswerIndex, len(attempt.Answers))
		}
	}

	regraded := attempt
	regraded.Answers = make([]models.AttemptAnswer, len(attempt.Answers))
	copy(regraded.Answers, attempt.Answers)

	for _, o := range overrides {
		regraded.Answers[o.AnswerIndex].IsCorrect = o.IsCorrect
	}

	summary := Aggregate(regraded.Answers, passingScore)
	regraded.Score = summary.Score
	regraded.Passed = summary.Passed
	regraded.UpdatedAt = time.Now()

	return regraded, nil
}
