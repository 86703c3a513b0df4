package normalize

import (
	"unicode/utf8"

	"remotebalkan-scraper/internal/storage"
)

// QualityScore rates how complete a hybrid row is, from 50 up to 100.
func QualityScore(job *storage.HybridJob, experienceKnown bool) int {
	score := 50
	if job.SalaryMin != nil && *job.SalaryMin != 0 && job.SalaryMax != nil && *job.SalaryMax != 0 {
		score += 20
	}
	if utf8.RuneCountInString(job.CompanyName) > 2 {
		score += 10
	}
	if utf8.RuneCountInString(job.Description) > 100 {
		score += 10
	}
	if len(job.Skills) > 0 {
		score += 5
	}
	if experienceKnown {
		score += 5
	}
	return min(score, 100)
}
