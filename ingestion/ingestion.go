// --- quizdeck-server/ingestion/ingestion.go ---
package ingestion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quizdeck-server/models"
	"quizdeck-server/utils"
)

const (
	defaultPoints           = 1
	defaultTimeLimitSeconds = 30
)

// Positional column order used when the upload has no recognizable header row.
var positionalColumns = []string{
	"question", "type", "choices", "correctanswer", "explanation", "points", "timelimit",
}

// Canonical column name for every accepted header spelling. Header cells are
// matched after lowercasing and stripping whitespace.
var headerAliases = map[string]string{
	"question":      "question",
	"type":          "type",
	"questiontype":  "type",
	"choices":       "choices",
	"correctanswer": "correctanswer",
	"correct":       "correctanswer",
	"explanation":   "explanation",
	"points":        "points",
	"timelimit":     "timelimit",
}

// Question type aliases, applied after lowercasing.
var typeAliases = map[string]models.QuestionKind{
	"mcq":            models.KindMCQ,
	"multiplechoice": models.KindMCQ,
	"true_false":     models.KindTrueFalse,
	"truefalse":      models.KindTrueFalse,
	"text":           models.KindText,
	"fill_blank":     models.KindFillBlank,
	"fillblank":      models.KindFillBlank,
}

// RowIssue is a row-addressable problem found during ingestion.
type RowIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i RowIssue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", i.Row, i.Field, i.Message)
	}
	return fmt.Sprintf("row %d: %s", i.Row, i.Message)
}

// Defaults are applied to every parsed question.
type Defaults struct {
	Category   string
	Difficulty string
}

// Result is the outcome of one bulk ingestion pass. Any entry in Errors
// blocks persistence of the whole batch; Warnings alone do not.
type Result struct {
	Questions []models.Question
	Errors    []RowIssue
	Warnings  []RowIssue
}

// HasErrors reports whether the batch must be rejected.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// ErrorStrings formats the collected errors for API responses.
func (r Result) ErrorStrings() []string { return issueStrings(r.Errors) }

// WarningStrings formats the collected warnings for API responses.
func (r Result) WarningStrings() []string { return issueStrings(r.Warnings) }

func issueStrings(issues []RowIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.String())
	}
	return out
}

// ParseRows converts raw tabular records into validated questions. The first
// record is treated as a header row when any of its cells matches a
// recognized column name; otherwise every record is data in the fixed
// positional order Question, Type, Choices, CorrectAnswer, Explanation,
// Points, TimeLimit. Rows are processed independently so one bad row never
// hides problems in the others.
func ParseRows(records [][]string, defaults Defaults) Result {
	var result Result
	if len(records) == 0 {
		result.Errors = append(result.Errors, RowIssue{Row: 0, Message: "upload contains no rows"})
		return result
	}

	columns, dataStart := detectColumns(records[0])

	for i := dataStart; i < len(records); i++ {
		rowNum := i + 1 // 1-based, matching the uploaded file
		rowMap := mapRow(records[i], columns)
		if isBlankRow(rowMap) {
			continue
		}
		q, errs, warns := buildQuestion(rowMap, defaults, rowNum)
		result.Warnings = append(result.Warnings, warns...)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		q.Position = len(result.Questions) + 1
		result.Questions = append(result.Questions, q)
	}

	if len(result.Questions) == 0 && !result.HasErrors() {
		result.Errors = append(result.Errors, RowIssue{Row: 0, Message: "upload contains no question rows"})
	}
	return result
}

// detectColumns inspects the first record. It returns the column layout and
// the index of the first data row.
func detectColumns(first []string) ([]string, int) {
	recognized := false
	header := make([]string, len(first))
	for j, cell := range first {
		key := normalizeHeader(cell)
		if canonical, ok := headerAliases[key]; ok {
			header[j] = canonical
			recognized = true
		}
	}
	if recognized {
		return header, 1
	}
	return positionalColumns, 0
}

func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}

func mapRow(row []string, columns []string) map[string]string {
	m := make(map[string]string, len(columns))
	for j, col := range columns {
		if col == "" || j >= len(row) {
			continue
		}
		m[col] = strings.TrimSpace(row[j])
	}
	return m
}

func isBlankRow(rowMap map[string]string) bool {
	for _, v := range rowMap {
		if v != "" {
			return false
		}
	}
	return true
}

// buildQuestion validates one row and produces a canonical question. All
// errors for the row are returned together so an admin can fix the file in
// one pass.
func buildQuestion(rowMap map[string]string, defaults Defaults, rowNum int) (models.Question, []RowIssue, []RowIssue) {
	var errs, warns []RowIssue

	kind := models.KindMCQ
	if rawType := strings.ToLower(rowMap["type"]); rawType != "" {
		mapped, ok := typeAliases[normalizeHeader(rawType)]
		if !ok {
			warns = append(warns, RowIssue{Row: rowNum, Field: "type",
				Message: fmt.Sprintf("unrecognized question type %q, defaulting to mcq", rawType)})
		} else {
			kind = mapped
		}
	}

	prompt := rowMap["question"]
	correct := rowMap["correctanswer"]
	if prompt == "" {
		errs = append(errs, RowIssue{Row: rowNum, Field: "question", Message: "question text is required"})
	}
	if correct == "" {
		errs = append(errs, RowIssue{Row: rowNum, Field: "correctanswer", Message: "correct answer is required"})
	}
	if len(errs) > 0 {
		return models.Question{}, errs, warns
	}

	q := models.Question{
		ID:               uuid.New(),
		Kind:             kind,
		Prompt:           prompt,
		CorrectAnswer:    correct,
		Points:           utils.PositiveAtoi(rowMap["points"], defaultPoints),
		TimeLimitSeconds: utils.PositiveAtoi(rowMap["timelimit"], defaultTimeLimitSeconds),
		Explanation:      rowMap["explanation"],
		Category:         defaults.Category,
		Difficulty:       defaults.Difficulty,
	}

	switch kind {
	case models.KindMCQ:
		choices, choiceErrs := buildMCQChoices(rowMap["choices"], correct, rowNum)
		if len(choiceErrs) > 0 {
			return models.Question{}, append(errs, choiceErrs...), warns
		}
		q.Choices = choices

	case models.KindTrueFalse:
		lower := strings.ToLower(correct)
		if lower != "true" && lower != "false" {
			errs = append(errs, RowIssue{Row: rowNum, Field: "correctanswer",
				Message: fmt.Sprintf("true/false answer must be true or false, got %q", correct)})
			return models.Question{}, errs, warns
		}
		// Canonical casing so the evaluator's exact match is well defined.
		q.CorrectAnswer = "False"
		if lower == "true" {
			q.CorrectAnswer = "True"
		}
		q.Choices = []models.Choice{
			{Text: "True", IsCorrect: lower == "true"},
			{Text: "False", IsCorrect: lower == "false"},
		}

	case models.KindText, models.KindFillBlank:
		// Correct answer retained verbatim as the matching target.
	}

	return q, nil, warns
}

// buildMCQChoices splits the raw choices cell on "|", falling back to ","
// for the legacy format, and flags correctness by case-insensitive match
// against the correct answer.
func buildMCQChoices(raw, correct string, rowNum int) ([]models.Choice, []RowIssue) {
	sep := "|"
	if !strings.Contains(raw, "|") {
		sep = ","
	}
	var texts []string
	for _, part := range strings.Split(raw, sep) {
		if t := strings.TrimSpace(part); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) < 2 {
		return nil, []RowIssue{{Row: rowNum, Field: "choices",
			Message: fmt.Sprintf("multiple choice questions require at least 2 choices, got %d", len(texts))}}
	}

	choices := make([]models.Choice, 0, len(texts))
	matches := 0
	for _, t := range texts {
		isCorrect := strings.EqualFold(t, correct)
		if isCorrect {
			matches++
		}
		choices = append(choices, models.Choice{Text: t, IsCorrect: isCorrect})
	}
	if matches == 0 {
		return nil, []RowIssue{{Row: rowNum, Field: "correctanswer",
			Message: fmt.Sprintf("correct answer %q does not match any choice", correct)}}
	}
	if matches > 1 {
		return nil, []RowIssue{{Row: rowNum, Field: "choices",
			Message: fmt.Sprintf("correct answer %q matches %d choices, must match exactly one", correct, matches)}}
	}
	return choices, nil
}
