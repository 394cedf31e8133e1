// --- quizdeck-server/analytics/analytics.go ---
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizdeck-server/models"
)

// TimeRange is the query window accepted by the analytics endpoints.
type TimeRange string

const (
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
	Range90d TimeRange = "90d"
	Range1y  TimeRange = "1y"
)

// Valid reports whether r is a recognized range.
func (r TimeRange) Valid() bool {
	switch r {
	case Range7d, Range30d, Range90d, Range1y:
		return true
	default:
		return false
	}
}

// Days returns the window length in days, defaulting to 30 for an
// unrecognized range.
func (r TimeRange) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range90d:
		return 90
	case Range1y:
		return 365
	default:
		return 30
	}
}

// ScoreBucket is one fixed score-distribution bucket.
type ScoreBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DailyPoint is the average score of one calendar day.
type DailyPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Average float64 `json:"average_score"`
}

// QuizRollup summarizes all attempts of one quiz.
type QuizRollup struct {
	QuizID                 int     `json:"quiz_id"`
	Title                  string  `json:"title"`
	AttemptCount           int     `json:"attempt_count"`
	AverageScore           float64 `json:"average_score"`
	PassRate               float64 `json:"pass_rate"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

// Performer is one leaderboard entry.
type Performer struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	AttemptCount int     `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
}

// QuestionStat aggregates attempt snapshots per question.
type QuestionStat struct {
	QuestionID   uuid.UUID `json:"question_id"`
	Prompt       string    `json:"prompt"`
	Attempts     int       `json:"attempts"`
	CorrectCount int       `json:"correct_count"`
	CorrectRate  float64   `json:"correct_rate"`
}

// DefaultLeaderboardSize bounds TopPerformers when the caller passes no
// explicit limit.
const DefaultLeaderboardSize = 5

// ScoreDistribution counts attempts into five fixed buckets: [0-20],
// (20-40], (40-60], (60-80], (80-100]. The bucket counts always sum to
// len(attempts).
func ScoreDistribution(attempts []models.Attempt) []ScoreBucket {
	buckets := []ScoreBucket{
		{Label: "0-20"}, {Label: "21-40"}, {Label: "41-60"}, {Label: "61-80"}, {Label: "81-100"},
	}
	for _, a := range attempts {
		buckets[bucketIndex(a.Score)].Count++
	}
	return buckets
}

func bucketIndex(score int) int {
	if score <= 20 {
		return 0
	}
	if score > 100 {
		return 4
	}
	return (score - 1) / 20
}

// DailyAverage returns the mean score for each of the last `days` calendar
// days ending at ref (inclusive). Day matching uses the attempt end time's
// local calendar date, and a day with no attempts averages 0.
func DailyAverage(attempts []models.Attempt, days int, ref time.Time) []DailyPoint {
	if days <= 0 {
		return []DailyPoint{}
	}
	points := make([]DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i)
		var sum, count int
		for _, a := range attempts {
			if sameCalendarDay(attemptDate(a), day) {
				sum += a.Score
				count++
			}
		}
		avg := 0.0
		if count > 0 {
			avg = round2(float64(sum) / float64(count))
		}
		points = append(points, DailyPoint{Date: day.Format("2006-01-02"), Average: avg})
	}
	return points
}

// attemptDate prefers the attempt's end time and falls back to its creation
// time for records persisted without one.
func attemptDate(a models.Attempt) time.Time {
	if !a.EndedAt.IsZero() {
		return a.EndedAt
	}
	return a.CreatedAt
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// PerQuizRollup computes attempt count, mean score, pass rate, and mean
// duration in minutes for every quiz, all rounded to 2 decimal places. A
// quiz with no attempts rolls up to zeros.
func PerQuizRollup(quizzes []models.Quiz, attempts []models.Attempt) []QuizRollup {
	byQuiz := make(map[int][]models.Attempt)
	for _, a := range attempts {
		byQuiz[a.QuizID] = append(byQuiz[a.QuizID], a)
	}

	rollups := make([]QuizRollup, 0, len(quizzes))
	for _, quiz := range quizzes {
		r := QuizRollup{QuizID: quiz.ID, Title: quiz.Title}
		quizAttempts := byQuiz[quiz.ID]
		r.AttemptCount = len(quizAttempts)
		if r.AttemptCount > 0 {
			var scoreSum, passed, durationSum int
			for _, a := range quizAttempts {
				scoreSum += a.Score
				durationSum += a.DurationSeconds
				if a.Passed {
					passed++
				}
			}
			n := float64(r.AttemptCount)
			r.AverageScore = round2(float64(scoreSum) / n)
			r.PassRate = round2(float64(passed) / n * 100)
			r.AverageDurationMinutes = round2(float64(durationSum) / n / 60)
		}
		rollups = append(rollups, r)
	}
	return rollups
}

// TopPerformers groups attempts by user email, averages each user's scores,
// and returns the top `limit` users by average. The sort is stable so ties
// keep their first-encounter order.
func TopPerformers(attempts []models.Attempt, limit int) []Performer {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	index := make(map[string]int)
	performers := make([]Performer, 0)
	sums := make([]int, 0)
	for _, a := range attempts {
		i, ok := index[a.UserEmail]
		if !ok {
			i = len(performers)
			index[a.UserEmail] = i
			performers = append(performers, Performer{Email: a.UserEmail, Name: a.UserName})
			sums = append(sums, 0)
		}
		performers[i].AttemptCount++
		sums[i] += a.Score
	}
	for i := range performers {
		performers[i].AverageScore = round2(float64(sums[i]) / float64(performers[i].AttemptCount))
	}

	sort.SliceStable(performers, func(i, j int) bool {
		return performers[i].AverageScore > performers[j].AverageScore
	})
	if len(performers) > limit {
		performers = performers[:limit]
	}
	return performers
}

// QuestionStats rolls attempt snapshots up per question ID, in first-seen
// order. Used for the admin question statistics page.
func QuestionStats(attempts []models.Attempt) []QuestionStat {
	index := make(map[uuid.UUID]int)
	stats := make([]QuestionStat, 0)
	for _, a := range attempts {
		for _, ans := range a.Answers {
			i, ok := index[ans.QuestionID]
			if !ok {
				i = len(stats)
				index[ans.QuestionID] = i
				stats = append(stats, QuestionStat{QuestionID: ans.QuestionID, Prompt: ans.QuestionText})
			}
			stats[i].Attempts++
			if ans.IsCorrect {
				stats[i].CorrectCount++
			}
		}
	}
	for i := range stats {
		if stats[i].Attempts > 0 {
			stats[i].CorrectRate = round2(float64(stats[i].CorrectCount) / float64(stats[i].Attempts) * 100)
		}
	}
	return stats
}

// FilterAttempts narrows an attempt collection to one quiz and/or a time
// window ending at ref. Zero quizID means all quizzes.
func FilterAttempts(attempts []models.Attempt, quizID int, rng TimeRange, ref time.Time) []models.Attempt {
	cutoff := ref.AddDate(0, 0, -rng.Days())
	out := make([]models.Attempt, 0, len(attempts))
	for _, a := range attempts {
		if quizID != 0 && a.QuizID != quizID {
			continue
		}
		if attemptDate(a).Before(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
