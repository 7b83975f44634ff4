package service

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/studyloop/studyloop-api/internal/models"
)

// Scoring weights and caps. These mirror the platform's historical dashboard
// and must not change without a coordinated frontend release.
const (
	videoPoints   = 40
	videoScoreCap = 4000
	quizWeight    = 30
	doubtPoints   = 50
	doubtScoreCap = 2000
	planPoints    = 100
	planScoreCap  = 1000

	videoMinutes = 10
	doubtMinutes = 5

	weeklyWindowDays = 7
)

const dayKeyLayout = "2006-01-02"

// computeSkillScore derives the weighted composite score from activity volume,
// quiz performance, doubt engagement and plan engagement.
//
// The quiz term averages each record's quiz scores, averages those averages
// across records and multiplies by quizWeight. It therefore does not grow with
// quiz volume the way the other terms do; that is long-standing dashboard
// behaviour and is kept for compatibility.
func computeSkillScore(activity models.UserActivity) models.SkillScore {
	videoCount := len(activity.VideoRequests) + len(activity.EducationalVideos)
	videoScore := float64(min(videoPoints*videoCount, videoScoreCap))

	var avgTotal float64
	quizCount := 0
	accumulate := func(results models.QuizResults) {
		if len(results) == 0 {
			return
		}
		var sum float64
		for _, result := range results {
			sum += result.Score
		}
		avgTotal += sum / float64(len(results))
		quizCount++
	}
	for _, video := range activity.VideoRequests {
		accumulate(video.QuizResults)
	}
	for _, video := range activity.EducationalVideos {
		accumulate(video.QuizResults)
	}
	var quizScore float64
	if quizCount > 0 {
		quizScore = (avgTotal / float64(quizCount)) * quizWeight
	}

	doubtScore := min(doubtPoints*len(activity.DoubtThreads), doubtScoreCap)
	planScore := min(planPoints*len(activity.SkillPlans), planScoreCap)

	score := int(math.Round(videoScore + quizScore + float64(doubtScore) + float64(planScore)))

	trend := "+1%"
	if score > 800 {
		trend = "+2%"
	}

	return models.SkillScore{
		Value:          score,
		Trend:          trend,
		FormattedValue: formatThousands(score),
	}
}

// computeCourseCompletion aggregates per-day completion flags across all of a
// user's skill plans. Plans with missing week plans contribute nothing.
func computeCourseCompletion(plans []models.SkillPlan) models.CourseCompletion {
	if len(plans) == 0 {
		return models.CourseCompletion{FormattedPercentage: "0%"}
	}

	var totalDays, completedDays int
	active := 0
	for _, plan := range plans {
		hasIncomplete := false
		for _, day := range plan.WeekPlan {
			totalDays++
			if day.Completed {
				completedDays++
			} else {
				hasIncomplete = true
			}
		}
		if hasIncomplete {
			active++
		}
	}

	percentage := 0
	if totalDays > 0 {
		percentage = int(math.Round(float64(completedDays) / float64(totalDays) * 100))
	}

	return models.CourseCompletion{
		Percentage:          percentage,
		Active:              active,
		Total:               len(plans),
		FormattedPercentage: fmt.Sprintf("%d%%", percentage),
	}
}

// computeStudyStreak collapses activity timestamps to calendar days in the
// asOf timezone and walks backward from asOf counting consecutive days. A
// walk yielding zero retries from the previous day, so a streak that ended
// yesterday still counts.
func computeStudyStreak(timestamps []time.Time, asOf time.Time) models.StudyStreak {
	if len(timestamps) == 0 {
		return models.StudyStreak{Days: 0, Message: "Start building!", Status: "inactive"}
	}

	loc := asOf.Location()
	activeDays := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		activeDays[ts.In(loc).Format(dayKeyLayout)] = struct{}{}
	}

	walk := func(from time.Time) int {
		count := 0
		for day := from; ; day = day.AddDate(0, 0, -1) {
			if _, ok := activeDays[day.Format(dayKeyLayout)]; !ok {
				break
			}
			count++
		}
		return count
	}

	days := walk(asOf)
	if days == 0 {
		days = walk(asOf.AddDate(0, 0, -1))
	}

	message := "Start building!"
	switch {
	case days >= 7:
		message = "Amazing streak!"
	case days >= 3:
		message = "Keep it up!"
	}

	status := "inactive"
	if days > 0 {
		status = "active"
	}

	return models.StudyStreak{Days: days, Message: message, Status: status}
}

// computeWeeklyHours buckets fixed per-activity-type minute estimates into a
// trailing 7-day window ending at asOf, oldest day first. Activity outside
// the window is dropped.
func computeWeeklyHours(activity models.UserActivity, asOf time.Time) []models.WeeklyHoursEntry {
	loc := asOf.Location()
	year, month, day := asOf.In(loc).Date()
	end := time.Date(year, month, day, 0, 0, 0, 0, loc)

	minutes := make(map[string]int, weeklyWindowDays)
	order := make([]time.Time, 0, weeklyWindowDays)
	for i := weeklyWindowDays - 1; i >= 0; i-- {
		slot := end.AddDate(0, 0, -i)
		order = append(order, slot)
		minutes[slot.Format(dayKeyLayout)] = 0
	}

	add := func(ts time.Time, estimate int) {
		key := ts.In(loc).Format(dayKeyLayout)
		if _, ok := minutes[key]; ok {
			minutes[key] += estimate
		}
	}
	for _, video := range activity.VideoRequests {
		add(video.CreatedAt, videoMinutes)
	}
	for _, video := range activity.EducationalVideos {
		add(video.CreatedAt, videoMinutes)
	}
	for _, doubt := range activity.DoubtThreads {
		add(doubt.CreatedAt, doubtMinutes)
	}

	entries := make([]models.WeeklyHoursEntry, 0, weeklyWindowDays)
	for _, slot := range order {
		hours := float64(minutes[slot.Format(dayKeyLayout)]) / 60
		entries = append(entries, models.WeeklyHoursEntry{
			Day:   slot.Weekday().String()[:3],
			Hours: math.Round(hours*10) / 10,
		})
	}
	return entries
}

// proficiencyBand describes how one fixed skill category is scored: matched
// categories land in [base, base+jitter), unmatched ones in [30, 60).
type proficiencyBand struct {
	name     string
	base     int
	jitter   int
	triggers []string
}

var proficiencyBands = []proficiencyBand{
	{name: "AI & ML", base: 70, jitter: 20, triggers: []string{"ai", "machine learning", "neural", "deep learning"}},
	{name: "WEB DEV", base: 75, jitter: 15, triggers: []string{"web", "react", "javascript", "frontend", "html", "css"}},
	{name: "DEVOPS", base: 60, jitter: 20, triggers: []string{"devops", "docker", "kubernetes", "ci/cd", "cloud"}},
	{name: "DATA SCI", base: 70, jitter: 15, triggers: []string{"data", "python", "pandas", "statistics"}},
	{name: "MOBILE", base: 60, jitter: 15, triggers: []string{"mobile", "android", "ios", "flutter"}},
}

const (
	unmatchedBase   = 30
	unmatchedJitter = 30
)

// computeSkillProficiency scores the five fixed categories by keyword
// presence in the user's activity text. The random source is injected so
// callers control determinism.
func computeSkillProficiency(activity models.UserActivity, rng *rand.Rand) []models.SkillProficiencyEntry {
	var builder strings.Builder
	for _, video := range activity.VideoRequests {
		builder.WriteString(video.Title)
		builder.WriteByte(' ')
		builder.WriteString(video.Summary)
		builder.WriteByte(' ')
	}
	for _, video := range activity.EducationalVideos {
		builder.WriteString(video.Title)
		builder.WriteByte(' ')
		builder.WriteString(video.Summary)
		builder.WriteByte(' ')
	}
	for _, plan := range activity.SkillPlans {
		builder.WriteString(plan.SkillName)
		builder.WriteByte(' ')
	}
	blob := strings.ToLower(builder.String())

	entries := make([]models.SkillProficiencyEntry, 0, len(proficiencyBands))
	for _, band := range proficiencyBands {
		matched := false
		for _, trigger := range band.triggers {
			if strings.Contains(blob, trigger) {
				matched = true
				break
			}
		}
		score := unmatchedBase + rng.Intn(unmatchedJitter)
		if matched {
			score = band.base + rng.Intn(band.jitter)
		}
		entries = append(entries, models.SkillProficiencyEntry{Name: band.name, Score: score})
	}
	return entries
}

var strengthDisplayNames = map[string]string{
	"AI & ML":  "Generative AI Concepts",
	"WEB DEV":  "React & Frontend",
	"DATA SCI": "Python Scripting",
}

// rankStrengths selects the top three proficiency scores and labels them.
func rankStrengths(entries []models.SkillProficiencyEntry) []models.StrengthEntry {
	ranked := make([]models.SkillProficiencyEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	limit := min(3, len(ranked))
	strengths := make([]models.StrengthEntry, 0, limit)
	for _, entry := range ranked[:limit] {
		name := entry.Name
		if display, ok := strengthDisplayNames[name]; ok {
			name = display
		}
		strengths = append(strengths, models.StrengthEntry{
			Name:                name,
			Percentage:          entry.Score,
			Level:               levelForScore(entry.Score),
			FormattedPercentage: fmt.Sprintf("%d%%", entry.Score),
		})
	}
	return strengths
}

func levelForScore(score int) string {
	switch {
	case score >= 85:
		return "Expert"
	case score >= 70:
		return "Advanced"
	case score >= 50:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// formatThousands renders n with comma separators every three digits.
func formatThousands(n int) string {
	raw := strconv.Itoa(n)
	negative := strings.HasPrefix(raw, "-")
	if negative {
		raw = raw[1:]
	}
	if len(raw) <= 3 {
		if negative {
			return "-" + raw
		}
		return raw
	}

	var builder strings.Builder
	lead := len(raw) % 3
	if lead > 0 {
		builder.WriteString(raw[:lead])
	}
	for i := lead; i < len(raw); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(raw[i : i+3])
	}
	if negative {
		return "-" + builder.String()
	}
	return builder.String()
}
