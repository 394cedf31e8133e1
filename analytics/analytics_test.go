package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizdeck-server/models"
)

func attemptWithScore(score int) models.Attempt {
	return models.Attempt{Score: score, Passed: score >= 70}
}

func TestScoreDistributionBoundaries(t *testing.T) {
	cases := []struct {
		score int
		label string
	}{
		{0, "0-20"},
		{20, "0-20"},
		{21, "21-40"},
		{40, "21-40"},
		{41, "41-60"},
		{60, "41-60"},
		{61, "61-80"},
		{80, "61-80"},
		{81, "81-100"},
		{100, "81-100"},
	}
	for _, tc := range cases {
		buckets := ScoreDistribution([]models.Attempt{attemptWithScore(tc.score)})
		for _, b := range buckets {
			if b.Label == tc.label {
				assert.Equal(t, 1, b.Count, "score %d should land in %s", tc.score, tc.label)
			} else {
				assert.Equal(t, 0, b.Count, "score %d leaked into %s", tc.score, b.Label)
			}
		}
	}
}

func TestScoreDistributionCountsSum(t *testing.T) {
	var attempts []models.Attempt
	for s := 0; s <= 100; s += 7 {
		attempts = append(attempts, attemptWithScore(s))
	}
	buckets := ScoreDistribution(attempts)
	require.Len(t, buckets, 5)
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, len(attempts), total)
}

func TestScoreDistributionEmpty(t *testing.T) {
	buckets := ScoreDistribution(nil)
	require.Len(t, buckets, 5)
	for _, b := range buckets {
		assert.Equal(t, 0, b.Count)
	}
}

func TestDailyAverage(t *testing.T) {
	// Day matching uses local calendar dates, so fixtures are built in
	// local time to stay independent of the machine's zone.
	ref := time.Date(2026, 8, 29, 15, 0, 0, 0, time.Local)
	yesterday := ref.AddDate(0, 0, -1)

	attempts := []models.Attempt{
		{Score: 80, EndedAt: ref.Add(-2 * time.Hour)},
		{Score: 60, EndedAt: ref.Add(-5 * time.Hour)},
		{Score: 100, EndedAt: yesterday},
		// Persisted without an end time, counted by creation time.
		{Score: 40, CreatedAt: yesterday.Add(time.Hour)},
		// Outside the window, ignored.
		{Score: 10, EndedAt: ref.AddDate(0, 0, -10)},
	}

	points := DailyAverage(attempts, 7, ref)
	require.Len(t, points, 7)

	assert.Equal(t, ref.AddDate(0, 0, -6).Format("2006-01-02"), points[0].Date)
	assert.Equal(t, ref.Format("2006-01-02"), points[6].Date)

	assert.Equal(t, 70.0, points[6].Average)
	assert.Equal(t, 70.0, points[5].Average)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, points[i].Average, "empty day %s must average 0", points[i].Date)
	}
}

func TestDailyAverageZeroDays(t *testing.T) {
	assert.Empty(t, DailyAverage(nil, 0, time.Now()))
}

func TestPerQuizRollup(t *testing.T) {
	quizzes := []models.Quiz{
		{ID: 1, Title: "Geography"},
		{ID: 2, Title: "Astronomy"},
	}
	attempts := []models.Attempt{
		{QuizID: 1, Score: 80, Passed: true, DurationSeconds: 300},
		{QuizID: 1, Score: 70, Passed: true, DurationSeconds: 420},
		{QuizID: 1, Score: 50, Passed: false, DurationSeconds: 180},
	}

	rollups := PerQuizRollup(quizzes, attempts)
	require.Len(t, rollups, 2)

	geo := rollups[0]
	assert.Equal(t, 1, geo.QuizID)
	assert.Equal(t, "Geography", geo.Title)
	assert.Equal(t, 3, geo.AttemptCount)
	assert.Equal(t, 66.67, geo.AverageScore)
	assert.Equal(t, 66.67, geo.PassRate)
	assert.Equal(t, 5.0, geo.AverageDurationMinutes)

	astro := rollups[1]
	assert.Equal(t, 0, astro.AttemptCount)
	assert.Equal(t, 0.0, astro.AverageScore)
	assert.Equal(t, 0.0, astro.PassRate)
	assert.Equal(t, 0.0, astro.AverageDurationMinutes)
}

func TestPerQuizRollupIdempotent(t *testing.T) {
	quizzes := []models.Quiz{{ID: 1, Title: "Geography"}}
	attempts := []models.Attempt{
		{QuizID: 1, Score: 80, Passed: true, DurationSeconds: 300},
		{QuizID: 1, Score: 40, DurationSeconds: 100},
	}
	first := PerQuizRollup(quizzes, attempts)
	second := PerQuizRollup(quizzes, attempts)
	assert.Equal(t, first, second)
}

func TestTopPerformers(t *testing.T) {
	attempts := []models.Attempt{
		{UserEmail: "ada@example.com", UserName: "Ada", Score: 90},
		{UserEmail: "grace@example.com", UserName: "Grace", Score: 80},
		{UserEmail: "ada@example.com", UserName: "Ada", Score: 70},
		{UserEmail: "alan@example.com", UserName: "Alan", Score: 95},
	}

	performers := TopPerformers(attempts, 2)
	require.Len(t, performers, 2)

	assert.Equal(t, "alan@example.com", performers[0].Email)
	assert.Equal(t, 95.0, performers[0].AverageScore)
	assert.Equal(t, 1, performers[0].AttemptCount)

	assert.Equal(t, "ada@example.com", performers[1].Email)
	assert.Equal(t, 80.0, performers[1].AverageScore)
	assert.Equal(t, 2, performers[1].AttemptCount)
}

func TestTopPerformersTiesKeepFirstEncounterOrder(t *testing.T) {
	attempts := []models.Attempt{
		{UserEmail: "first@example.com", Score: 80},
		{UserEmail: "second@example.com", Score: 80},
		{UserEmail: "third@example.com", Score: 80},
	}
	performers := TopPerformers(attempts, 10)
	require.Len(t, performers, 3)
	assert.Equal(t, "first@example.com", performers[0].Email)
	assert.Equal(t, "second@example.com", performers[1].Email)
	assert.Equal(t, "third@example.com", performers[2].Email)
}

func TestTopPerformersDefaultLimit(t *testing.T) {
	var attempts []models.Attempt
	for i := 0; i < 8; i++ {
		attempts = append(attempts, models.Attempt{
			UserEmail: string(rune('a'+i)) + "@example.com",
			Score:     100 - i,
		})
	}
	performers := TopPerformers(attempts, 0)
	assert.Len(t, performers, DefaultLeaderboardSize)
	assert.Equal(t, "a@example.com", performers[0].Email)
}

func TestQuestionStats(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	attempts := []models.Attempt{
		{Answers: []models.AttemptAnswer{
			{QuestionID: q1, QuestionText: "Capital of France?", IsCorrect: true},
			{QuestionID: q2, QuestionText: "Largest planet?", IsCorrect: false},
		}},
		{Answers: []models.AttemptAnswer{
			{QuestionID: q1, QuestionText: "Capital of France?", IsCorrect: false},
			{QuestionID: q2, QuestionText: "Largest planet?", IsCorrect: false},
		}},
	}

	stats := QuestionStats(attempts)
	require.Len(t, stats, 2)

	assert.Equal(t, q1, stats[0].QuestionID)
	assert.Equal(t, 2, stats[0].Attempts)
	assert.Equal(t, 1, stats[0].CorrectCount)
	assert.Equal(t, 50.0, stats[0].CorrectRate)

	assert.Equal(t, q2, stats[1].QuestionID)
	assert.Equal(t, 0.0, stats[1].CorrectRate)
}

func TestFilterAttempts(t *testing.T) {
	ref := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	attempts := []models.Attempt{
		{QuizID: 1, EndedAt: ref.AddDate(0, 0, -3)},
		{QuizID: 2, EndedAt: ref.AddDate(0, 0, -3)},
		{QuizID: 1, EndedAt: ref.AddDate(0, 0, -40)},
	}

	all := FilterAttempts(attempts, 0, Range30d, ref)
	assert.Len(t, all, 2)

	quiz1 := FilterAttempts(attempts, 1, Range30d, ref)
	require.Len(t, quiz1, 1)
	assert.Equal(t, 1, quiz1[0].QuizID)

	wide := FilterAttempts(attempts, 0, Range1y, ref)
	assert.Len(t, wide, 3)
}

func TestTimeRange(t *testing.T) {
	assert.True(t, Range7d.Valid())
	assert.True(t, Range1y.Valid())
	assert.False(t, TimeRange("14d").Valid())

	assert.Equal(t, 7, Range7d.Days())
	assert.Equal(t, 30, Range30d.Days())
	assert.Equal(t, 90, Range90d.Days())
	assert.Equal(t, 365, Range1y.Days())
	assert.Equal(t, 30, TimeRange("bogus").Days())
}
