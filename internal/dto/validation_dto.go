package dto

// ValidationIssue names one structural or content defect found by a
// validator. Issues are reported in the order they were discovered so a
// caller can display all defects at once.
type ValidationIssue struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ValidationReport is the collect-all result of a validation pass.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

// NewValidationReport wraps a list of issues into a report.
func NewValidationReport(issues []ValidationIssue) ValidationReport {
	if issues == nil {
		issues = []ValidationIssue{}
	}
	return ValidationReport{Valid: len(issues) == 0, Issues: issues}
}
