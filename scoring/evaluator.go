// --- quizdeck-server/scoring/evaluator.go ---
package scoring

import (
	"strings"

	"quizdeck-server/models"
)

// Evaluate decides whether a raw submitted answer is correct for the given
// question. It never fails: an empty, missing, or malformed answer is simply
// incorrect, so one bad answer can never abort scoring an attempt.
//
// Matching rules differ by kind. MCQ and true/false compare exact strings as
// submitted by the UI layer, while text and fill-in-the-blank are trimmed and
// case-insensitive.
func Evaluate(q models.Question, rawAnswer string) bool {
	if rawAnswer == "" {
		return false
	}
	switch q.Kind {
	case models.KindMCQ:
		correct := q.CorrectChoiceText()
		return correct != "" && rawAnswer == correct
	case models.KindTrueFalse:
		return rawAnswer == q.CorrectAnswer
	case models.KindText, models.KindFillBlank:
		return strings.EqualFold(strings.TrimSpace(rawAnswer), strings.TrimSpace(q.CorrectAnswer))
	default:
		return false
	}
}
