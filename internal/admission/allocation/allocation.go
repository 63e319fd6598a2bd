// internal/admission/allocation/allocation.go

// Package allocation turns a ranked applicant list into per-applicant
// SELECTED / WAITLISTED / REJECTED decisions under seat capacity, reservation
// quotas, and an optional cutoff score. Decisions only; persisting them is the
// caller's job.
package allocation

import (
	"fmt"
	"math"

	"admission-workers/internal/admission/ranking"
	"admission-workers/internal/models"
)

// GeneralCategory is the implicit unreserved bucket. Applicants whose category
// has no configured quota compete here.
const GeneralCategory = "General"

// Decision reason codes, recorded in the audit trail.
const (
	ReasonSeatAvailable    = "seat_available"
	ReasonBelowCutoff      = "below_cutoff"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonWaitlistFull     = "waitlist_full"
)

// Decision is the allocation outcome for one applicant.
type Decision struct {
	ApplicationID string
	Category      string
	Status        models.ApplicationStatus
	Reason        string
}

// ValidateQuotas checks a campaign's reservation configuration before any
// decision is made. Percentages must lie in (0,100], categories must be
// distinct, and the reserved seats must not consume more than totalSeats.
func ValidateQuotas(totalSeats int, quotas []models.ReservationQuota) error {
	if totalSeats <= 0 {
		return fmt.Errorf("totalSeats must be positive, got %d", totalSeats)
	}

	seen := make(map[string]bool, len(quotas))
	reserved := 0
	for _, q := range quotas {
		if q.Category == "" {
			return fmt.Errorf("reservation quota with empty category")
		}
		if seen[q.Category] {
			return fmt.Errorf("duplicate reservation quota for category %q", q.Category)
		}
		seen[q.Category] = true
		if q.Percentage <= 0 || q.Percentage > 100 {
			return fmt.Errorf("quota percentage for %q must be in (0,100], got %v", q.Category, q.Percentage)
		}
		reserved += reservedSeats(totalSeats, q.Percentage)
	}

	if reserved > totalSeats {
		return fmt.Errorf("reserved seats (%d) exceed total seats (%d)", reserved, totalSeats)
	}
	return nil
}

// Capacities computes the per-category seat counts. Each reserved category
// gets round(totalSeats*percentage/100); the general bucket gets whatever
// remains. ValidateQuotas must have passed first.
func Capacities(totalSeats int, quotas []models.ReservationQuota) map[string]int {
	capacities := make(map[string]int, len(quotas)+1)
	reserved := 0
	for _, q := range quotas {
		seats := reservedSeats(totalSeats, q.Percentage)
		capacities[q.Category] = seats
		reserved += seats
	}
	capacities[GeneralCategory] = totalSeats - reserved
	return capacities
}

// Allocate walks the ranked list in rank order and decides each applicant's
// outcome within their category's capacity.
//
// An applicant below the configured cutoff is REJECTED no matter how many
// seats remain. Above the cutoff, applicants take seats in rank order until
// their category is full; overflow is WAITLISTED, capped per category by
// waitlistLimit (0 means unbounded), and REJECTED beyond the cap. Unfilled
// seats in one category never roll over to another.
func Allocate(ranked []ranking.Ranked, totalSeats int, quotas []models.ReservationQuota, cutoff *float64, waitlistLimit int) []Decision {
	capacities := Capacities(totalSeats, quotas)
	waitlisted := make(map[string]int, len(capacities))

	decisions := make([]Decision, 0, len(ranked))
	for _, r := range ranked {
		bucket := r.App.Category
		if _, reserved := capacities[bucket]; !reserved || bucket == "" {
			bucket = GeneralCategory
		}

		d := Decision{ApplicationID: r.App.ID, Category: bucket}
		switch {
		case cutoff != nil && r.MeritScore < *cutoff:
			d.Status = models.StatusRejected
			d.Reason = ReasonBelowCutoff
		case capacities[bucket] > 0:
			capacities[bucket]--
			d.Status = models.StatusSelected
			d.Reason = ReasonSeatAvailable
		case waitlistLimit == 0 || waitlisted[bucket] < waitlistLimit:
			waitlisted[bucket]++
			d.Status = models.StatusWaitlisted
			d.Reason = ReasonCapacityExceeded
		default:
			d.Status = models.StatusRejected
			d.Reason = ReasonWaitlistFull
		}
		decisions = append(decisions, d)
	}
	return decisions
}

func reservedSeats(totalSeats int, percentage float64) int {
	return int(math.Round(float64(totalSeats) * percentage / 100))
}
