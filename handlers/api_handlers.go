// --- quizdeck-server/handlers/api_handlers.go ---
package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizdeck-server/db"
	"quizdeck-server/models"
	"quizdeck-server/scoring"
	"quizdeck-server/utils"
)

// learnerChoice hides correctness flags from quiz-taking payloads.
type learnerChoice struct {
	Text string `json:"text"`
}

// learnerQuestion is the answer-free question view served to learners.
type learnerQuestion struct {
	ID               uuid.UUID           `json:"id"`
	Position         int                 `json:"position"`
	Kind             models.QuestionKind `json:"kind"`
	Prompt           string              `json:"prompt"`
	Choices          []learnerChoice     `json:"choices,omitempty"`
	Points           int                 `json:"points"`
	TimeLimitSeconds int                 `json:"time_limit_seconds"`
}

func toLearnerQuestions(questions []models.Question) []learnerQuestion {
	out := make([]learnerQuestion, 0, len(questions))
	for _, q := range questions {
		lq := learnerQuestion{
			ID:               q.ID,
			Position:         q.Position,
			Kind:             q.Kind,
			Prompt:           q.Prompt,
			Points:           q.Points,
			TimeLimitSeconds: q.TimeLimitSeconds,
		}
		for _, c := range q.Choices {
			lq.Choices = append(lq.Choices, learnerChoice{Text: c.Text})
		}
		out = append(out, lq)
	}
	return out
}

// ListQuizzes lists available quizzes with attempt counts.
// GET /api/v1/quizzes
func ListQuizzes(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		quizzes, err := db.ListQuizzes(pool)
		if err != nil {
			log.Printf("Error querying quizzes: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quizzes"})
			return
		}
		c.JSON(http.StatusOK, quizzes)
	}
}

// GetQuiz returns one quiz with its questions, correct answers withheld.
// GET /api/v1/quizzes/:quiz_id
func GetQuiz(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		quizID, err := strconv.Atoi(c.Param("quiz_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
			return
		}
		quiz, err := db.GetQuiz(pool, quizID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":            quiz.ID,
			"title":         quiz.Title,
			"description":   quiz.Description,
			"passing_score": quiz.PassingScore,
			"questions":     toLearnerQuestions(quiz.Questions),
		})
	}
}

// SubmitAttempt scores a learner's submission and stores the frozen attempt.
// POST /api/v1/quizzes/:quiz_id/attempts
func SubmitAttempt(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		quizID, err := strconv.Atoi(c.Param("quiz_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
			return
		}

		var req models.AttemptSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.EndedAt.Before(req.StartedAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ended_at precedes started_at"})
			return
		}

		quiz, err := db.GetQuiz(pool, quizID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}

		userEmail := req.UserEmail
		if userEmail == "" {
			userEmail = c.GetString("user_email") // Set by JWT middleware
		}
		userName := req.UserName
		if userName == "" {
			userName = c.GetString("user_name")
		}

		result := scoring.ScoreAttempt(quiz.Questions, req.Answers, quiz.PassingScore)

		attempt := models.Attempt{
			PublicID:        uuid.New(),
			QuizID:          quiz.ID,
			UserName:        userName,
			UserEmail:       userEmail,
			Score:           result.Score,
			Passed:          result.Passed,
			StartedAt:       req.StartedAt,
			EndedAt:         req.EndedAt,
			DurationSeconds: int(req.EndedAt.Sub(req.StartedAt).Seconds()),
			Answers:         result.Answers,
		}

		stored, err := db.InsertAttempt(pool, attempt)
		if err != nil {
			log.Printf("Error storing attempt for quiz %d, user %s: %v", quiz.ID, userEmail, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attempt"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"attempt_id":    stored.ID,
			"public_id":     stored.PublicID,
			"score":         result.Score,
			"passed":        result.Passed,
			"earned_points": result.EarnedPoints,
			"total_points":  result.TotalPoints,
			"answers":       result.Answers,
		})
	}
}

// GetUserAttempts lists past attempts for a learner.
// GET /api/v1/users/:email/attempts
func GetUserAttempts(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		userEmail := c.GetString("user_email") // From JWT middleware
		userRoles := c.GetStringSlice("user_roles")
		isAdmin := utils.ContainsString(userRoles, "admin")

		if email != userEmail && !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. You can only view your own attempts."})
			return
		}

		attempts, err := db.ListAttemptsByEmail(pool, email)
		if err != nil {
			log.Printf("Error querying attempts for %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attempts"})
			return
		}
		c.JSON(http.StatusOK, attempts)
	}
}
