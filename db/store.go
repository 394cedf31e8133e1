// --- quizdeck-server/db/store.go ---
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quizdeck-server/models"
	"quizdeck-server/utils"
)

// InsertQuiz persists a quiz with its questions and choices in a single
// transaction. The upload boundary is all-or-nothing: a partial quiz is
// never written.
func InsertQuiz(pool *pgxpool.Pool, quiz models.Quiz, questions []models.Question) (int, error) {
	tx, err := pool.Begin(context.Background())
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.Background()) // Rollback on error

	var quizID int
	err = tx.QueryRow(context.Background(), `
		INSERT INTO quizzes (title, description, passing_score, created_by)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, quiz.Title, quiz.Description, quiz.PassingScore, quiz.CreatedBy).Scan(&quizID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quiz %q: %w", quiz.Title, err)
	}

	for i, q := range questions {
		_, err := tx.Exec(context.Background(), `
			INSERT INTO questions (id, quiz_id, position, kind, prompt, correct_answer, points, time_limit_seconds, explanation, category, difficulty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, q.ID, quizID, i+1, string(q.Kind), q.Prompt, q.CorrectAnswer, q.Points, q.TimeLimitSeconds,
			utils.StringPtr(q.Explanation), utils.StringPtr(q.Category), utils.StringPtr(q.Difficulty))
		if err != nil {
			return 0, fmt.Errorf("failed to insert question %q: %w", q.Prompt, err)
		}
		for j, c := range q.Choices {
			_, err := tx.Exec(context.Background(), `
				INSERT INTO choices (question_id, choice_text, is_correct, position)
				VALUES ($1, $2, $3, $4)
			`, q.ID, c.Text, c.IsCorrect, j+1)
			if err != nil {
				return 0, fmt.Errorf("failed to insert choice %q for question %q: %w", c.Text, q.Prompt, err)
			}
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return 0, fmt.Errorf("failed to commit quiz transaction: %w", err)
	}
	return quizID, nil
}

// GetQuiz loads one quiz with its questions and choices in position order.
func GetQuiz(pool *pgxpool.Pool, quizID int) (models.Quiz, error) {
	var quiz models.Quiz
	var description, createdBy *string
	err := pool.QueryRow(context.Background(), `
		SELECT id, title, description, passing_score, created_by, created_at, updated_at
		FROM quizzes WHERE id = $1
	`, quizID).Scan(&quiz.ID, &quiz.Title, &description, &quiz.PassingScore, &createdBy, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("quiz %d not found: %w", quizID, err)
	}
	if description != nil {
		quiz.Description = *description
	}
	if createdBy != nil {
		quiz.CreatedBy = *createdBy
	}

	questions, err := GetQuizQuestions(pool, quizID)
	if err != nil {
		return models.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// GetQuizQuestions loads the questions of a quiz, choices included.
func GetQuizQuestions(pool *pgxpool.Pool, quizID int) ([]models.Question, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT id, quiz_id, position, kind, prompt, correct_answer, points, time_limit_seconds, explanation, category, difficulty
		FROM questions WHERE quiz_id = $1 ORDER BY position
	`, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions for quiz %d: %w", quizID, err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var kind string
		var explanation, category, difficulty *string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Position, &kind, &q.Prompt, &q.CorrectAnswer,
			&q.Points, &q.TimeLimitSeconds, &explanation, &category, &difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		q.Kind = models.QuestionKind(kind)
		if explanation != nil {
			q.Explanation = *explanation
		}
		if category != nil {
			q.Category = *category
		}
		if difficulty != nil {
			q.Difficulty = *difficulty
		}
		questions = append(questions, q)
	}

	for i := range questions {
		choiceRows, err := pool.Query(context.Background(), `
			SELECT choice_text, is_correct FROM choices WHERE question_id = $1 ORDER BY position
		`, questions[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query choices for question %s: %w", questions[i].ID, err)
		}
		for choiceRows.Next() {
			var c models.Choice
			if err := choiceRows.Scan(&c.Text, &c.IsCorrect); err != nil {
				choiceRows.Close()
				return nil, fmt.Errorf("failed to scan choice row: %w", err)
			}
			questions[i].Choices = append(questions[i].Choices, c)
		}
		choiceRows.Close()
	}
	return questions, nil
}

// InsertAttempt persists a scored attempt and its frozen answer snapshot in
// one transaction, returning the stored record with its IDs filled in.
func InsertAttempt(pool *pgxpool.Pool, attempt models.Attempt) (models.Attempt, error) {
	tx, err := pool.Begin(context.Background())
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.Background())

	err = tx.QueryRow(context.Background(), `
		INSERT INTO attempts (public_id, quiz_id, user_name, user_email, score, passed, started_at, ended_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, attempt.PublicID, attempt.QuizID, attempt.UserName, attempt.UserEmail, attempt.Score, attempt.Passed,
		attempt.StartedAt, attempt.EndedAt, attempt.DurationSeconds).Scan(&attempt.ID, &attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to insert attempt: %w", err)
	}

	for i, a := range attempt.Answers {
		_, err := tx.Exec(context.Background(), `
			INSERT INTO attempt_answers (attempt_id, question_id, position, question_text, student_answer, correct_answer, points, is_correct, time_spent_seconds)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, attempt.ID, a.QuestionID, i+1, a.QuestionText, a.StudentAnswer, a.CorrectAnswer, a.Points, a.IsCorrect, a.TimeSpentSeconds)
		if err != nil {
			return models.Attempt{}, fmt.Errorf("failed to insert attempt answer %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to commit attempt transaction: %w", err)
	}
	return attempt, nil
}

// GetAttempt loads one attempt with its answers in position order.
func GetAttempt(pool *pgxpool.Pool, attemptID int) (models.Attempt, error) {
	var a models.Attempt
	err := pool.QueryRow(context.Background(), `
		SELECT id, public_id, quiz_id, user_name, user_email, score, passed, started_at, ended_at, duration_seconds, created_at, updated_at
		FROM attempts WHERE id = $1
	`, attemptID).Scan(&a.ID, &a.PublicID, &a.QuizID, &a.UserName, &a.UserEmail, &a.Score, &a.Passed,
		&a.StartedAt, &a.EndedAt, &a.DurationSeconds, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("attempt %d not found: %w", attemptID, err)
	}

	answers, err := getAttemptAnswers(pool, attemptID)
	if err != nil {
		return models.Attempt{}, err
	}
	a.Answers = answers
	return a, nil
}

func getAttemptAnswers(pool *pgxpool.Pool, attemptID int) ([]models.AttemptAnswer, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT question_id, question_text, student_answer, correct_answer, points, is_correct, time_spent_seconds
		FROM attempt_answers WHERE attempt_id = $1 ORDER BY position
	`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers for attempt %d: %w", attemptID, err)
	}
	defer rows.Close()

	var answers []models.AttemptAnswer
	for rows.Next() {
		var ans models.AttemptAnswer
		var studentAnswer *string
		if err := rows.Scan(&ans.QuestionID, &ans.QuestionText, &studentAnswer, &ans.CorrectAnswer,
			&ans.Points, &ans.IsCorrect, &ans.TimeSpentSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan attempt answer row: %w", err)
		}
		if studentAnswer != nil {
			ans.StudentAnswer = *studentAnswer
		}
		answers = append(answers, ans)
	}
	return answers, nil
}

// UpdateAttemptGrades writes a regraded attempt back: per-answer correctness
// plus the recomputed score and verdict. Last write wins; concurrent
// regrades of the same attempt are not arbitrated here.
func UpdateAttemptGrades(pool *pgxpool.Pool, attempt models.Attempt) error {
	tx, err := pool.Begin(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.Background())

	_, err = tx.Exec(context.Background(), `
		UPDATE attempts SET score = $1, passed = $2, updated_at = $3 WHERE id = $4
	`, attempt.Score, attempt.Passed, attempt.UpdatedAt, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to update attempt %d: %w", attempt.ID, err)
	}

	for i, a := range attempt.Answers {
		_, err := tx.Exec(context.Background(), `
			UPDATE attempt_answers SET is_correct = $1 WHERE attempt_id = $2 AND position = $3
		`, a.IsCorrect, attempt.ID, i+1)
		if err != nil {
			return fmt.Errorf("failed to update answer %d of attempt %d: %w", i+1, attempt.ID, err)
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return fmt.Errorf("failed to commit regrade transaction: %w", err)
	}
	return nil
}

// ListAttempts loads attempts, optionally narrowed to one quiz and/or a
// lower bound on end time. Answers are included so analytics can roll up
// per-question statistics from the snapshots.
func ListAttempts(pool *pgxpool.Pool, quizID int, since time.Time) ([]models.Attempt, error) {
	query := `
		SELECT id, public_id, quiz_id, user_name, user_email, score, passed, started_at, ended_at, duration_seconds, created_at, updated_at
		FROM attempts
		WHERE ($1 = 0 OR quiz_id = $1) AND ended_at >= $2
		ORDER BY id
	`
	rows, err := pool.Query(context.Background(), query, quizID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.PublicID, &a.QuizID, &a.UserName, &a.UserEmail, &a.Score, &a.Passed,
			&a.StartedAt, &a.EndedAt, &a.DurationSeconds, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}

	for i := range attempts {
		answers, err := getAttemptAnswers(pool, attempts[i].ID)
		if err != nil {
			return nil, err
		}
		attempts[i].Answers = answers
	}
	return attempts, nil
}

// ListAttemptsByEmail returns a learner's attempt history, most recent
// first, without the answer snapshots.
func ListAttemptsByEmail(pool *pgxpool.Pool, email string) ([]models.Attempt, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT id, public_id, quiz_id, user_name, user_email, score, passed, started_at, ended_at, duration_seconds, created_at, updated_at
		FROM attempts WHERE user_email = $1 ORDER BY ended_at DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts for %s: %w", email, err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.PublicID, &a.QuizID, &a.UserName, &a.UserEmail, &a.Score, &a.Passed,
			&a.StartedAt, &a.EndedAt, &a.DurationSeconds, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// ListQuizzes returns all quizzes with their attempt counts, newest first.
func ListQuizzes(pool *pgxpool.Pool) ([]models.Quiz, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT q.id, q.title, q.description, q.passing_score, q.created_at, q.updated_at,
			COUNT(a.id) AS attempt_count
		FROM quizzes q
		LEFT JOIN attempts a ON q.id = a.quiz_id
		GROUP BY q.id
		ORDER BY q.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var quiz models.Quiz
		var description *string
		if err := rows.Scan(&quiz.ID, &quiz.Title, &description, &quiz.PassingScore,
			&quiz.CreatedAt, &quiz.UpdatedAt, &quiz.AttemptCount); err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		if description != nil {
			quiz.Description = *description
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// ListErrorLogs returns the most recent ingestion error log entries.
func ListErrorLogs(pool *pgxpool.Pool, limit int) ([]models.ErrorLog, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT id, timestamp, source, quiz_ref, row_number, field_name, error_message, suggested_fix
		FROM error_logs ORDER BY timestamp DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query error logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ErrorLog
	for rows.Next() {
		var e models.ErrorLog
		var quizRef *string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &quizRef, &e.RowNumber, &e.FieldName,
			&e.ErrorMessage, &e.SuggestedFix); err != nil {
			return nil, fmt.Errorf("failed to scan error log row: %w", err)
		}
		if quizRef != nil {
			e.QuizRef = *quizRef
		}
		logs = append(logs, e)
	}
	return logs, nil
}
