// internal/admission/allocation/allocation_test.go
package allocation

import (
	"testing"
	"time"

	"admission-workers/internal/admission/ranking"
	"admission-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func rankedApp(id, category string, rank int, score float64) ranking.Ranked {
	return ranking.Ranked{
		App: models.Application{
			ID:          id,
			CampaignID:  "camp-1",
			Category:    category,
			SubmittedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		MeritScore: score,
		Rank:       rank,
	}
}

func TestValidateQuotas(t *testing.T) {
	tests := []struct {
		name       string
		totalSeats int
		quotas     []models.ReservationQuota
		wantErr    bool
	}{
		{
			name:       "no quotas",
			totalSeats: 10,
		},
		{
			name:       "valid split",
			totalSeats: 100,
			quotas: []models.ReservationQuota{
				{Category: "OBC", Percentage: 27},
				{Category: "SC", Percentage: 15},
				{Category: "ST", Percentage: 7.5},
			},
		},
		{
			name:       "zero total seats",
			totalSeats: 0,
			wantErr:    true,
		},
		{
			name:       "duplicate category",
			totalSeats: 100,
			quotas: []models.ReservationQuota{
				{Category: "OBC", Percentage: 10},
				{Category: "OBC", Percentage: 10},
			},
			wantErr: true,
		},
		{
			name:       "percentage above 100",
			totalSeats: 100,
			quotas:     []models.ReservationQuota{{Category: "OBC", Percentage: 101}},
			wantErr:    true,
		},
		{
			name:       "zero percentage",
			totalSeats: 100,
			quotas:     []models.ReservationQuota{{Category: "OBC", Percentage: 0}},
			wantErr:    true,
		},
		{
			name:       "empty category",
			totalSeats: 100,
			quotas:     []models.ReservationQuota{{Category: "", Percentage: 10}},
			wantErr:    true,
		},
		{
			name:       "rounded reservations exceed seats",
			totalSeats: 10,
			quotas: []models.ReservationQuota{
				{Category: "A", Percentage: 55},
				{Category: "B", Percentage: 55},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuotas(tt.totalSeats, tt.quotas)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCapacities(t *testing.T) {
	quotas := []models.ReservationQuota{
		{Category: "OBC", Percentage: 27},
		{Category: "SC", Percentage: 15},
	}

	capacities := Capacities(100, quotas)

	assert.Equal(t, 27, capacities["OBC"])
	assert.Equal(t, 15, capacities["SC"])
	assert.Equal(t, 58, capacities[GeneralCategory])
}

func TestCapacities_RoundsReservedSeats(t *testing.T) {
	// 7.5% of 10 seats rounds to 1.
	capacities := Capacities(10, []models.ReservationQuota{{Category: "ST", Percentage: 7.5}})

	assert.Equal(t, 1, capacities["ST"])
	assert.Equal(t, 9, capacities[GeneralCategory])
}

func TestAllocate_FillsSeatsInRankOrder(t *testing.T) {
	ranked := []ranking.Ranked{
		rankedApp("a", "", 1, 90),
		rankedApp("b", "", 2, 85),
		rankedApp("c", "", 3, 80),
	}

	decisions := Allocate(ranked, 2, nil, nil, 0)

	require.Len(t, decisions, 3)
	assert.Equal(t, models.StatusSelected, decisions[0].Status)
	assert.Equal(t, models.StatusSelected, decisions[1].Status)
	assert.Equal(t, models.StatusWaitlisted, decisions[2].Status)
	assert.Equal(t, ReasonCapacityExceeded, decisions[2].Reason)
}

func TestAllocate_CutoffBeatsCapacity(t *testing.T) {
	// Seats remain but the second applicant misses the cutoff.
	ranked := []ranking.Ranked{
		rankedApp("a", "", 1, 74),
		rankedApp("b", "", 2, 55),
	}

	decisions := Allocate(ranked, 10, nil, fp(60), 0)

	assert.Equal(t, models.StatusSelected, decisions[0].Status)
	assert.Equal(t, models.StatusRejected, decisions[1].Status)
	assert.Equal(t, ReasonBelowCutoff, decisions[1].Reason)
}

func TestAllocate_CutoffFailureDoesNotConsumeSeat(t *testing.T) {
	ranked := []ranking.Ranked{
		rankedApp("a", "", 1, 50),
		rankedApp("b", "", 2, 45),
		rankedApp("c", "", 3, 70),
	}

	// Only one seat; the two below-cutoff applicants ahead of c must not eat it.
	decisions := Allocate(ranked, 1, nil, fp(60), 0)

	assert.Equal(t, models.StatusRejected, decisions[0].Status)
	assert.Equal(t, models.StatusRejected, decisions[1].Status)
	assert.Equal(t, models.StatusSelected, decisions[2].Status)
}

func TestAllocate_PerCategoryQuotas(t *testing.T) {
	quotas := []models.ReservationQuota{{Category: "SC", Percentage: 20}}
	// 10 seats: 2 reserved for SC, 8 general.
	ranked := []ranking.Ranked{
		rankedApp("sc-1", "SC", 1, 95),
		rankedApp("sc-2", "SC", 2, 90),
		rankedApp("sc-3", "SC", 3, 88),
		rankedApp("gen-1", "", 4, 85),
	}

	decisions := Allocate(ranked, 10, quotas, nil, 0)

	byID := map[string]Decision{}
	for _, d := range decisions {
		byID[d.ApplicationID] = d
	}
	assert.Equal(t, models.StatusSelected, byID["sc-1"].Status)
	assert.Equal(t, models.StatusSelected, byID["sc-2"].Status)
	// Third SC applicant overflows the SC quota even though general seats remain.
	assert.Equal(t, models.StatusWaitlisted, byID["sc-3"].Status)
	assert.Equal(t, models.StatusSelected, byID["gen-1"].Status)
}

func TestAllocate_UnreservedCategoryFallsToGeneral(t *testing.T) {
	quotas := []models.ReservationQuota{{Category: "SC", Percentage: 50}}
	ranked := []ranking.Ranked{
		rankedApp("a", "EWS", 1, 90),
	}

	decisions := Allocate(ranked, 2, quotas, nil, 0)

	require.Len(t, decisions, 1)
	assert.Equal(t, GeneralCategory, decisions[0].Category)
	assert.Equal(t, models.StatusSelected, decisions[0].Status)
}

func TestAllocate_NoCrossCategoryBorrowing(t *testing.T) {
	quotas := []models.ReservationQuota{{Category: "ST", Percentage: 50}}
	// 4 seats: 2 ST, 2 general. No ST applicants; their seats stay empty.
	ranked := []ranking.Ranked{
		rankedApp("g1", "", 1, 90),
		rankedApp("g2", "", 2, 85),
		rankedApp("g3", "", 3, 80),
	}

	decisions := Allocate(ranked, 4, quotas, nil, 0)

	assert.Equal(t, models.StatusSelected, decisions[0].Status)
	assert.Equal(t, models.StatusSelected, decisions[1].Status)
	assert.Equal(t, models.StatusWaitlisted, decisions[2].Status)
}

func TestAllocate_WaitlistLimit(t *testing.T) {
	ranked := []ranking.Ranked{
		rankedApp("a", "", 1, 90),
		rankedApp("b", "", 2, 85),
		rankedApp("c", "", 3, 80),
		rankedApp("d", "", 4, 75),
	}

	decisions := Allocate(ranked, 1, nil, nil, 2)

	assert.Equal(t, models.StatusSelected, decisions[0].Status)
	assert.Equal(t, models.StatusWaitlisted, decisions[1].Status)
	assert.Equal(t, models.StatusWaitlisted, decisions[2].Status)
	assert.Equal(t, models.StatusRejected, decisions[3].Status)
	assert.Equal(t, ReasonWaitlistFull, decisions[3].Reason)
}

func TestAllocate_QuotaRespectProperty(t *testing.T) {
	quotas := []models.ReservationQuota{
		{Category: "OBC", Percentage: 30},
		{Category: "SC", Percentage: 20},
	}
	totalSeats := 10
	categories := []string{"OBC", "SC", "", "OBC", "SC", "", "OBC", ""}

	var ranked []ranking.Ranked
	for i := 0; i < 40; i++ {
		ranked = append(ranked, rankedApp(
			// ids only need to be unique here
			string(rune('a'+i%26))+string(rune('a'+i/26)),
			categories[i%len(categories)],
			i+1,
			float64(100-i),
		))
	}

	decisions := Allocate(ranked, totalSeats, quotas, nil, 0)

	selectedPerCategory := map[string]int{}
	for _, d := range decisions {
		if d.Status == models.StatusSelected {
			selectedPerCategory[d.Category]++
		}
	}
	capacities := Capacities(totalSeats, quotas)
	for category, count := range selectedPerCategory {
		assert.LessOrEqual(t, count, capacities[category], "category %s over capacity", category)
	}
	total := 0
	for _, count := range selectedPerCategory {
		total += count
	}
	assert.LessOrEqual(t, total, totalSeats)
}
