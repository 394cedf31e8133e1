// --- quizdeck-server/handlers/dashboard.go ---
package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizdeck-server/analytics"
	"quizdeck-server/db"
	"quizdeck-server/models"
)

// DashboardMetrics is the cached snapshot the admin dashboard renders.
type DashboardMetrics struct {
	TotalQuizzes      int
	TotalAttempts     int
	PassRate          float64
	ScoreDistribution []analytics.ScoreBucket
	TopPerformers     []analytics.Performer
	RecentErrors      []models.ErrorLog
	RefreshedAt       time.Time
}

// DashboardCache holds precomputed dashboard aggregates. The aggregator
// functions themselves stay pure; this cache only exists so the dashboard
// page and the background warm job do not recompute on every request.
type DashboardCache struct {
	mu      sync.RWMutex
	metrics DashboardMetrics
}

func NewDashboardCache() *DashboardCache {
	return &DashboardCache{}
}

// Refresh recomputes the dashboard aggregates from the store.
func (dc *DashboardCache) Refresh(pool *pgxpool.Pool) error {
	now := time.Now()
	attempts, err := db.ListAttempts(pool, 0, now.AddDate(0, 0, -analytics.Range90d.Days()))
	if err != nil {
		return err
	}
	quizzes, err := db.ListQuizzes(pool)
	if err != nil {
		return err
	}
	recentErrors, err := db.ListErrorLogs(pool, 5)
	if err != nil {
		return err
	}

	passed := 0
	for _, a := range attempts {
		if a.Passed {
			passed++
		}
	}
	passRate := 0.0
	if len(attempts) > 0 {
		passRate = float64(passed) / float64(len(attempts)) * 100
	}

	metrics := DashboardMetrics{
		TotalQuizzes:      len(quizzes),
		TotalAttempts:     len(attempts),
		PassRate:          passRate,
		ScoreDistribution: analytics.ScoreDistribution(attempts),
		TopPerformers:     analytics.TopPerformers(attempts, analytics.DefaultLeaderboardSize),
		RecentErrors:      recentErrors,
		RefreshedAt:       now,
	}

	dc.mu.Lock()
	dc.metrics = metrics
	dc.mu.Unlock()
	return nil
}

// Get returns the last cached snapshot.
func (dc *DashboardCache) Get() DashboardMetrics {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.metrics
}

// AdminDashboard renders the admin dashboard with cached metrics.
// GET /admin/dashboard
func AdminDashboard(pool *pgxpool.Pool, cache *DashboardCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics := cache.Get()
		if metrics.RefreshedAt.IsZero() {
			if err := cache.Refresh(pool); err != nil {
				log.Printf("Error refreshing dashboard metrics: %v", err)
				c.HTML(http.StatusInternalServerError, "admin_dashboard", gin.H{"error": "Failed to load dashboard metrics"})
				return
			}
			metrics = cache.Get()
		}

		c.HTML(http.StatusOK, "admin_dashboard", gin.H{
			"Title":             "QuizDeck Admin Dashboard",
			"TotalQuizzes":      metrics.TotalQuizzes,
			"TotalAttempts":     metrics.TotalAttempts,
			"PassRate":          metrics.PassRate,
			"ScoreDistribution": metrics.ScoreDistribution,
			"TopPerformers":     metrics.TopPerformers,
			"RecentErrors":      metrics.RecentErrors,
			"RefreshedAt":       metrics.RefreshedAt,
			"UserEmail":         c.GetString("user_email"),
		})
	}
}
