// --- quizdeck-server/handlers/admin_handlers.go ---
package handlers

import (
	"encoding/csv"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizdeck-server/analytics"
	"quizdeck-server/db"
	"quizdeck-server/ingestion"
	"quizdeck-server/models"
	"quizdeck-server/scoring"
	"quizdeck-server/utils"
)

// AdminCreateQuiz builds a quiz from hand-authored questions.
// POST /admin/quizzes
func AdminCreateQuiz(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AdminQuizCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req.Questions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one question is required"})
			return
		}
		passingScore := req.PassingScore
		if passingScore == 0 {
			passingScore = defaultPassingScore(pool)
		}
		if passingScore < 0 || passingScore > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passing_score must be between 0 and 100"})
			return
		}

		questions := make([]models.Question, len(req.Questions))
		var errors []string
		for i, q := range req.Questions {
			if q.ID == uuid.Nil {
				q.ID = uuid.New()
			}
			if q.Points == 0 {
				q.Points = 1
			}
			if q.TimeLimitSeconds == 0 {
				q.TimeLimitSeconds = 30
			}
			if err := q.Validate(); err != nil {
				errors = append(errors, "question "+strconv.Itoa(i+1)+": "+err.Error())
			}
			questions[i] = q
		}
		if len(errors) > 0 {
			c.JSON(http.StatusUnprocessableEntity, models.UploadResult{Errors: errors})
			return
		}

		quiz := models.Quiz{
			Title:        req.Title,
			Description:  req.Description,
			PassingScore: passingScore,
			CreatedBy:    c.GetString("user_email"),
		}
		quizID, err := db.InsertQuiz(pool, quiz, questions)
		if err != nil {
			log.Printf("Error inserting quiz %q: %v", req.Title, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quiz"})
			return
		}
		c.JSON(http.StatusCreated, models.UploadResult{QuizID: quizID, QuestionCount: len(questions)})
	}
}

// AdminUploadQuiz ingests a CSV upload into a new quiz. Any row error
// rejects the whole batch; nothing is persisted and the errors are returned
// with row and field detail.
// POST /admin/quizzes/upload
func AdminUploadQuiz(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.PostForm("title")
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title form field is required"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			log.Printf("Error opening upload %q: %v", fileHeader.Filename, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1 // Rows are validated per column, not per width
		records, err := reader.ReadAll()
		if err != nil {
			db.LogError(pool, "bulk_upload", title, 0, "", "Failed to parse CSV: "+err.Error(),
				"Ensure the file is valid CSV with consistent quoting.")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to parse CSV: " + err.Error()})
			return
		}

		defaults := ingestion.Defaults{
			Category:   c.PostForm("category"),
			Difficulty: c.PostForm("difficulty"),
		}
		result := ingestion.ParseRows(records, defaults)

		if result.HasErrors() {
			for _, issue := range result.Errors {
				db.LogError(pool, "bulk_upload", title, issue.Row, issue.Field, issue.Message,
					"Fix the row in the source spreadsheet and re-upload the whole file.")
			}
			c.JSON(http.StatusUnprocessableEntity, models.UploadResult{
				Errors:   result.ErrorStrings(),
				Warnings: result.WarningStrings(),
			})
			return
		}

		quiz := models.Quiz{
			Title:        title,
			Description:  c.PostForm("description"),
			PassingScore: utils.PositiveAtoi(c.PostForm("passing_score"), defaultPassingScore(pool)),
			CreatedBy:    c.GetString("user_email"),
		}
		quizID, err := db.InsertQuiz(pool, quiz, result.Questions)
		if err != nil {
			log.Printf("Error persisting uploaded quiz %q: %v", title, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist quiz"})
			return
		}

		c.JSON(http.StatusCreated, models.UploadResult{
			QuizID:        quizID,
			QuestionCount: len(result.Questions),
			Warnings:      result.WarningStrings(),
		})
	}
}

// AdminIngestBundle loads a quiz bundle directory (quiz.yaml + questions.csv)
// from the configured bundle path.
// POST /admin/quizzes/ingest/:slug
func AdminIngestBundle(pool *pgxpool.Pool, bundlePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		dir := filepath.Join(bundlePath, slug)

		meta, result, err := ingestion.LoadBundle(dir)
		if err != nil {
			db.LogError(pool, "bundle_ingestion", slug, 0, "", err.Error(),
				"Ensure the bundle directory contains quiz.yaml and questions.csv.")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if result.HasErrors() {
			for _, issue := range result.Errors {
				db.LogError(pool, "bundle_ingestion", slug, issue.Row, issue.Field, issue.Message,
					"Fix questions.csv and re-run the ingestion.")
			}
			c.JSON(http.StatusUnprocessableEntity, models.UploadResult{
				Errors:   result.ErrorStrings(),
				Warnings: result.WarningStrings(),
			})
			return
		}

		passingScore := meta.PassingScore
		if passingScore == 0 {
			passingScore = defaultPassingScore(pool)
		}
		quiz := models.Quiz{
			Title:        meta.Title,
			Description:  meta.Description,
			PassingScore: passingScore,
			CreatedBy:    c.GetString("user_email"),
		}
		quizID, err := db.InsertQuiz(pool, quiz, result.Questions)
		if err != nil {
			log.Printf("Error persisting bundle %q: %v", slug, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist quiz"})
			return
		}

		c.JSON(http.StatusCreated, models.UploadResult{
			QuizID:        quizID,
			QuestionCount: len(result.Questions),
			Warnings:      result.WarningStrings(),
		})
	}
}

// AdminRegradeAttempt applies manual correctness overrides to a stored
// attempt and persists the recomputed score. All-or-nothing: an invalid
// override index leaves the attempt untouched.
// POST /admin/attempts/:attempt_id/regrade
func AdminRegradeAttempt(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		attemptID, err := strconv.Atoi(c.Param("attempt_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attempt ID"})
			return
		}
		var req models.RegradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		attempt, err := db.GetAttempt(pool, attemptID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
			return
		}
		quiz, err := db.GetQuiz(pool, attempt.QuizID)
		if err != nil {
			log.Printf("Error loading quiz %d for regrade of attempt %d: %v", attempt.QuizID, attemptID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quiz for regrade"})
			return
		}

		regraded, err := scoring.Regrade(attempt, req.Overrides, quiz.PassingScore)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if err := db.UpdateAttemptGrades(pool, regraded); err != nil {
			log.Printf("Error persisting regrade of attempt %d: %v", attemptID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist regrade"})
			return
		}
		c.JSON(http.StatusOK, regraded)
	}
}

// AdminAnalytics serves the aggregate statistics as JSON.
// GET /admin/analytics?range=30d&quiz_id=3
func AdminAnalytics(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rng := analytics.TimeRange(c.DefaultQuery("range", string(analytics.Range30d)))
		if !rng.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of 7d, 30d, 90d, 1y"})
			return
		}
		quizID := 0
		if raw := c.Query("quiz_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz_id"})
				return
			}
			quizID = id
		}

		now := time.Now()
		attempts, err := db.ListAttempts(pool, quizID, now.AddDate(0, 0, -rng.Days()))
		if err != nil {
			log.Printf("Error loading attempts for analytics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attempts"})
			return
		}
		quizzes, err := db.ListQuizzes(pool)
		if err != nil {
			log.Printf("Error loading quizzes for analytics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quizzes"})
			return
		}

		leaderboardSize := analytics.DefaultLeaderboardSize
		if v, err := db.GetSetting(pool, "leaderboard_size"); err == nil {
			leaderboardSize = utils.PositiveAtoi(v, leaderboardSize)
		}

		days := rng.Days()
		if days > 90 {
			days = 90 // Daily series is capped; yearly windows still feed the other rollups
		}

		c.JSON(http.StatusOK, gin.H{
			"range":              string(rng),
			"quiz_id":            quizID,
			"attempt_count":      len(attempts),
			"score_distribution": analytics.ScoreDistribution(attempts),
			"daily_average":      analytics.DailyAverage(attempts, days, now),
			"per_quiz":           analytics.PerQuizRollup(quizzes, attempts),
			"top_performers":     analytics.TopPerformers(attempts, leaderboardSize),
			"question_stats":     analytics.QuestionStats(attempts),
		})
	}
}

// AdminErrorLogs renders recent ingestion failures.
// GET /admin/error_logs
func AdminErrorLogs(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := db.ListErrorLogs(pool, 100)
		if err != nil {
			log.Printf("Error fetching error logs: %v", err)
			c.HTML(http.StatusInternalServerError, "admin_error_logs", gin.H{"error": "Failed to retrieve error logs"})
			return
		}
		c.HTML(http.StatusOK, "admin_error_logs", gin.H{
			"Title":     "Ingestion Error Logs",
			"ErrorLogs": logs,
			"UserEmail": c.GetString("user_email"),
		})
	}
}

func defaultPassingScore(pool *pgxpool.Pool) int {
	if v, err := db.GetSetting(pool, "default_passing_score"); err == nil {
		return utils.PositiveAtoi(v, 70)
	}
	return 70
}
