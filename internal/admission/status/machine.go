// internal/admission/status/machine.go

// Package status is the application lifecycle state machine. Manual review
// actions move applications along an explicit edge list; the merit-list
// allocator writes its decisions through a separate guarded path. Anything
// off the edge list is an error, never coerced.
package status

import (
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/models"
)

// manualEdges is the full set of legal manual transitions.
//
//	DRAFT -> SUBMITTED -> UNDER_REVIEW -> SHORTLISTED
//	SHORTLISTED <-> ENTRANCE_SCHEDULED / INTERVIEW_SCHEDULED
//	SELECTED -> ADMITTED / WITHDRAWN, WAITLISTED -> WITHDRAWN
//	UNDER_REVIEW -> REJECTED (review rejection, final)
var manualEdges = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusDraft:              {models.StatusSubmitted},
	models.StatusSubmitted:          {models.StatusUnderReview},
	models.StatusUnderReview:        {models.StatusShortlisted, models.StatusRejected},
	models.StatusShortlisted:        {models.StatusEntranceScheduled, models.StatusInterviewScheduled},
	models.StatusEntranceScheduled:  {models.StatusShortlisted},
	models.StatusInterviewScheduled: {models.StatusShortlisted},
	models.StatusSelected:           {models.StatusAdmitted, models.StatusWithdrawn},
	models.StatusWaitlisted:         {models.StatusWithdrawn},
}

// allocator decision statuses
var decisionStatuses = map[models.ApplicationStatus]bool{
	models.StatusSelected:   true,
	models.StatusWaitlisted: true,
	models.StatusRejected:   true,
}

// ValidateManual checks a manual review transition against the edge list.
func ValidateManual(from, to models.ApplicationStatus) error {
	for _, next := range manualEdges[from] {
		if next == to {
			return nil
		}
	}
	return stderrors.NewIllegalStatusTransitionError(string(from), string(to))
}

// IsTerminal reports whether an application can never change status again.
// ADMITTED and WITHDRAWN are always final. REJECTED is final only when a
// reviewer stamped it; a merit-list rejection is superseded by the next run.
func IsTerminal(s models.ApplicationStatus, source models.DecisionSource) bool {
	switch s {
	case models.StatusAdmitted, models.StatusWithdrawn:
		return true
	case models.StatusRejected:
		return source != models.DecisionSourceMeritList
	}
	return false
}

// AllocatorEligible reports whether a recomputation run may (re)decide this
// application. Eligible: SHORTLISTED, plus applications holding a previous
// merit-list decision, so a re-run fully supersedes the last one.
func AllocatorEligible(app models.Application) bool {
	switch app.Status {
	case models.StatusShortlisted:
		return true
	case models.StatusSelected, models.StatusWaitlisted:
		return app.DecisionSource == models.DecisionSourceMeritList
	case models.StatusRejected:
		return app.DecisionSource == models.DecisionSourceMeritList
	}
	return false
}

// ValidateDecision guards one allocator decision before it is persisted. The
// target must be a decision status and the application must still be in the
// allocator-owned set. A violation here is an internal invariant breach; the
// caller excludes the applicant and reports it rather than failing the run.
func ValidateDecision(app models.Application, to models.ApplicationStatus) error {
	if !decisionStatuses[to] {
		return stderrors.NewIllegalStatusTransitionError(string(app.Status), string(to))
	}
	if !AllocatorEligible(app) {
		return stderrors.NewIllegalStatusTransitionError(string(app.Status), string(to))
	}
	return nil
}
