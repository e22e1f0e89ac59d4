package dto

// StageCounts maps each lifecycle stage name to the number of instances
// currently in it. The "Total" key holds the overall count.
type StageCounts map[string]int

// FormStatisticsResponse aggregates submission statistics for one form.
type FormStatisticsResponse struct {
	FormID       uint        `json:"form_id"`
	Stages       StageCounts `json:"stages"`
	AverageScore *float64    `json:"average_score,omitempty"`
}

// UserStatisticsResponse aggregates submission statistics for one user.
type UserStatisticsResponse struct {
	UserID string      `json:"user_id"`
	Stages StageCounts `json:"stages"`
}

// YearlyTrendsResponse counts instances per form for an academic year.
type YearlyTrendsResponse struct {
	AcademicYear string         `json:"academic_year"`
	FormCounts   map[string]int `json:"form_counts"`
}
