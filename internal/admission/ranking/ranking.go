// internal/admission/ranking/ranking.go

// Package ranking produces the stable total ordering of a campaign's scored
// applicants and assigns dense, distinct ranks 1..N.
package ranking

import (
	"sort"

	"admission-workers/internal/models"
)

// Scored pairs an application with its computed merit score for this run.
type Scored struct {
	App        models.Application
	MeritScore float64
}

// Ranked is a scored application with its assigned rank.
type Ranked struct {
	App        models.Application
	MeritScore float64
	Rank       int
}

// Rank orders scored applicants and assigns dense ranks 1..N.
//
// Order: meritScore desc, then entranceScore desc, then interviewScore desc,
// then submittedAt asc (earlier submission wins), then id asc. The id fallback
// makes the ordering total, so equal applicants still receive distinct ranks
// and two runs over the same input produce identical output.
func Rank(scored []Scored) []Ranked {
	ordered := make([]Scored, len(scored))
	copy(ordered, scored)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.MeritScore != b.MeritScore {
			return a.MeritScore > b.MeritScore
		}
		ae, be := models.ScoreOrZero(a.App.EntranceScore), models.ScoreOrZero(b.App.EntranceScore)
		if ae != be {
			return ae > be
		}
		ai, bi := models.ScoreOrZero(a.App.InterviewScore), models.ScoreOrZero(b.App.InterviewScore)
		if ai != bi {
			return ai > bi
		}
		if !a.App.SubmittedAt.Equal(b.App.SubmittedAt) {
			return a.App.SubmittedAt.Before(b.App.SubmittedAt)
		}
		return a.App.ID < b.App.ID
	})

	ranked := make([]Ranked, len(ordered))
	for i, s := range ordered {
		ranked[i] = Ranked{
			App:        s.App,
			MeritScore: s.MeritScore,
			Rank:       i + 1,
		}
	}
	return ranked
}
