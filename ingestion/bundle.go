// --- quizdeck-server/ingestion/bundle.go ---
package ingestion

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"quizdeck-server/models"
)

// LoadBundle reads a quiz bundle directory containing quiz.yaml and
// questions.csv and runs the question file through the bulk parser. The
// caller decides persistence; row errors in the returned Result follow the
// same all-or-nothing policy as the upload path.
func LoadBundle(dir string) (models.QuizYAML, Result, error) {
	var meta models.QuizYAML

	metaPath := filepath.Join(dir, "quiz.yaml")
	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		return meta, Result{}, fmt.Errorf("failed to read quiz.yaml: %w", err)
	}
	if err := yaml.Unmarshal(metaData, &meta); err != nil {
		return meta, Result{}, fmt.Errorf("failed to parse quiz.yaml: %w", err)
	}
	if meta.Title == "" {
		return meta, Result{}, fmt.Errorf("quiz.yaml is missing a title")
	}
	if meta.PassingScore < 0 || meta.PassingScore > 100 {
		return meta, Result{}, fmt.Errorf("quiz.yaml passing_score must be between 0 and 100, got %d", meta.PassingScore)
	}

	csvPath := filepath.Join(dir, "questions.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		return meta, Result{}, fmt.Errorf("failed to open questions.csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Rows are validated per column, not per width
	records, err := reader.ReadAll()
	if err != nil {
		return meta, Result{}, fmt.Errorf("failed to read questions.csv: %w", err)
	}

	result := ParseRows(records, Defaults{Category: meta.Category, Difficulty: meta.Difficulty})
	return meta, result, nil
}
