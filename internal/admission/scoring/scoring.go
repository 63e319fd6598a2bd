// internal/admission/scoring/scoring.go

// Package scoring turns raw per-applicant component scores into a single
// weighted merit score. Pure functions only; the orchestrator owns I/O.
package scoring

import (
	"fmt"

	"admission-workers/internal/models"
)

const weightSum = 100.0

// ValidateCriteria checks the campaign weight configuration before any
// applicant is scored. The four weights must each lie in [0,100] and sum to
// exactly 100; weights are never silently normalized.
func ValidateCriteria(c models.MeritCriteria) error {
	weights := map[string]float64{
		"academicWeight":        c.AcademicWeight,
		"entranceWeight":        c.EntranceWeight,
		"interviewWeight":       c.InterviewWeight,
		"extracurricularWeight": c.ExtraWeight,
	}
	for name, w := range weights {
		if w < 0 || w > 100 {
			return fmt.Errorf("%s must be in [0,100], got %v", name, w)
		}
	}

	sum := c.AcademicWeight + c.EntranceWeight + c.InterviewWeight + c.ExtraWeight
	if sum != weightSum {
		return fmt.Errorf("criteria weights must sum to exactly 100, got %v", sum)
	}
	return nil
}

// Score computes the weighted merit score for one application. Missing raw
// component scores contribute 0 rather than disqualifying the applicant, since
// not every campaign runs entrance exams or interviews.
func Score(app models.Application, c models.MeritCriteria) float64 {
	return models.ScoreOrZero(app.AcademicScore)*c.AcademicWeight/weightSum +
		models.ScoreOrZero(app.EntranceScore)*c.EntranceWeight/weightSum +
		models.ScoreOrZero(app.InterviewScore)*c.InterviewWeight/weightSum +
		models.ScoreOrZero(app.ExtraScore)*c.ExtraWeight/weightSum
}
