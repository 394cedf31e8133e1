// --- quizdeck-server/db/db.go ---
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quizdeck-server/utils"
)

// InitDB initializes the PostgreSQL database connection pool
func InitDB(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Ping the database to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the necessary tables for QuizDeck.
// In a production environment, use a proper migration tool (e.g., golang-migrate).
func CreateSchema(pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		passing_score INT NOT NULL CHECK (passing_score >= 0 AND passing_score <= 100),
		created_by VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY,
		quiz_id INT NOT NULL,
		position INT NOT NULL,
		kind VARCHAR(20) NOT NULL CHECK (kind IN ('mcq', 'true_false', 'text', 'fill_blank')),
		prompt TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		points INT NOT NULL DEFAULT 1,
		time_limit_seconds INT NOT NULL DEFAULT 30,
		explanation TEXT,
		category VARCHAR(100),
		difficulty VARCHAR(50),
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE,
		UNIQUE (quiz_id, position)
	);

	CREATE TABLE IF NOT EXISTS choices (
		id SERIAL PRIMARY KEY,
		question_id UUID NOT NULL,
		choice_text TEXT NOT NULL,
		is_correct BOOLEAN DEFAULT FALSE,
		position INT NOT NULL,
		FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id SERIAL PRIMARY KEY,
		public_id UUID NOT NULL UNIQUE,
		quiz_id INT NOT NULL,
		user_name VARCHAR(255),
		user_email VARCHAR(255),
		score INT NOT NULL CHECK (score >= 0 AND score <= 100),
		passed BOOLEAN NOT NULL,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		ended_at TIMESTAMP WITH TIME ZONE NOT NULL,
		duration_seconds INT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS attempt_answers (
		id SERIAL PRIMARY KEY,
		attempt_id INT NOT NULL,
		question_id UUID NOT NULL,
		position INT NOT NULL,
		question_text TEXT NOT NULL,
		student_answer TEXT,
		correct_answer TEXT NOT NULL,
		points INT NOT NULL,
		is_correct BOOLEAN NOT NULL,
		time_spent_seconds INT NOT NULL DEFAULT 0,
		FOREIGN KEY (attempt_id) REFERENCES attempts(id) ON DELETE CASCADE,
		UNIQUE (attempt_id, position)
	);

	CREATE TABLE IF NOT EXISTS error_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL, -- e.g., "bulk_upload", "bundle_ingestion"
		quiz_ref VARCHAR(255),
		row_number INT,
		field_name TEXT,
		error_message TEXT NOT NULL,
		suggested_fix TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(255) PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_by VARCHAR(255)
	);
	`
	_, err := pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	// Insert default settings if not already present
	defaultSettings := map[string]string{
		"default_passing_score": "70",
		"leaderboard_size":      "5",
	}

	for key, value := range defaultSettings {
		_, err := pool.Exec(context.Background(), `
			INSERT INTO settings (key, value, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING;
		`, key, value, fmt.Sprintf("Default setting for %s", key))
		if err != nil {
			log.Printf("Warning: Failed to insert default setting %s: %v", key, err)
		}
	}

	return nil
}

// LogError adds an entry to the error_logs table. Row number 0 and empty
// field name are stored as NULL.
func LogError(pool *pgxpool.Pool, source, quizRef string, rowNumber int, fieldName, errMsg, fixSug string) {
	_, err := pool.Exec(context.Background(), `
		INSERT INTO error_logs (source, quiz_ref, row_number, field_name, error_message, suggested_fix)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, source, quizRef, utils.IntPtr(rowNumber), utils.StringPtr(fieldName), errMsg, utils.StringPtr(fixSug))
	if err != nil {
		log.Printf("ERROR: Failed to log error to database: %v. Original error: %s", err, errMsg)
	}
}

// GetSetting fetches a setting value from the settings table
func GetSetting(pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(context.Background(), "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("setting %s not found: %w", key, err)
	}
	return value, nil
}
