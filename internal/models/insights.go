package models

// InsightType classifies an advisory message
type InsightType string

const (
	InsightWarning     InsightType = "warning"
	InsightAchievement InsightType = "achievement"
	InsightTrend       InsightType = "trend"
	InsightTip         InsightType = "tip"
)

// Insight is a short rule-based advisory message. Lower priority values are
// shown first.
type Insight struct {
	ID                string      `json:"id"`
	Type              InsightType `json:"type"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Icon              string      `json:"icon"`
	RelatedCategoryID string      `json:"relatedCategoryId,omitempty"`
	Priority          int         `json:"priority"`
}

// StreakData summarizes the trailing 30 days of spending
type StreakData struct {
	NoSpendStreak      int     `json:"noSpendStreak"`
	UnderAverageStreak int     `json:"underAverageStreak"`
	DailyAverage       float64 `json:"dailyAverage"`
}

// Grade buckets the overall health score
type Grade string

const (
	GradePoor      Grade = "poor"
	GradeFair      Grade = "fair"
	GradeGood      Grade = "good"
	GradeExcellent Grade = "excellent"
)

// HealthComponent is one weighted sub-score of the health score
type HealthComponent struct {
	Label  string  `json:"label"`
	Score  int     `json:"score"`  // 0-100
	Weight float64 `json:"weight"` // weights sum to 1
}

// HealthScore is the weighted composite of all components
type HealthScore struct {
	Overall    int               `json:"overall"`
	Components []HealthComponent `json:"components"`
	Grade      Grade             `json:"grade"`
}
