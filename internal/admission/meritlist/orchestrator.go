// internal/admission/meritlist/orchestrator.go

// Package meritlist is the recomputation orchestrator: one atomic, idempotent
// merit-list run per campaign. It composes scoring, ranking, allocation, and
// the status machine, then persists every result row in a single transaction.
package meritlist

import (
	"context"
	"time"

	"admission-workers/internal/admission/allocation"
	"admission-workers/internal/admission/ranking"
	"admission-workers/internal/admission/scoring"
	"admission-workers/internal/admission/search"
	"admission-workers/internal/admission/status"
	"admission-workers/internal/admission/store"
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/common/metrics"
	"admission-workers/internal/models"

	"github.com/google/uuid"
)

// Store is the persistence surface a run needs.
type Store interface {
	GetCampaign(ctx context.Context, campaignID string) (*models.Campaign, error)
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	SaveMeritList(ctx context.Context, campaignID string, results []store.MeritListRow) error
	RecordAudit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{})
}

// Locker serializes runs per campaign.
type Locker interface {
	Acquire(ctx context.Context, campaignID string) (string, error)
	Release(ctx context.Context, campaignID, token string) error
}

// Indexer receives the finished list for search and reporting.
type Indexer interface {
	IndexMeritList(ctx context.Context, doc search.Document) error
}

// Input is one merit-list trigger.
type Input struct {
	CampaignID        string
	Criteria          models.MeritCriteria
	CutoffScore       *float64
	ReservationPolicy bool
}

// Exclusion is one applicant left out of a run, with the reason, for the
// audit trail.
type Exclusion struct {
	ApplicationID string                   `json:"applicationId"`
	Status        models.ApplicationStatus `json:"status"`
	Reason        string                   `json:"reason"`
}

// Summary is the result of one run.
type Summary struct {
	RunID          string      `json:"runId"`
	TotalProcessed int         `json:"totalProcessed"`
	Selected       int         `json:"selected"`
	Waitlisted     int         `json:"waitlisted"`
	Rejected       int         `json:"rejected"`
	Excluded       int         `json:"excluded"`
	Exclusions     []Exclusion `json:"exclusions,omitempty"`
}

// eligibleStatuses is the load set. Review-rejected rows inside it are
// partitioned out afterwards; they share the REJECTED status with
// merit-list rejections and only decision_source tells them apart.
var eligibleStatuses = []models.ApplicationStatus{
	models.StatusShortlisted,
	models.StatusSelected,
	models.StatusWaitlisted,
	models.StatusRejected,
}

// Orchestrator runs merit-list generation for campaigns.
type Orchestrator struct {
	store   Store
	lock    Locker
	indexer Indexer
	logger  logger.Logger
}

func New(st Store, lk Locker, ix Indexer, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:   st,
		lock:    lk,
		indexer: ix,
		logger:  log.WithFields(map[string]interface{}{"component": "meritlist-orchestrator"}),
	}
}

// Run executes one merit-list generation.
//
// Order: validate criteria, acquire the campaign lock, load campaign and
// applications, partition exclusions, score, rank, allocate, validate each
// decision, persist everything in one transaction, then audit and index.
// Configuration and not-found failures happen before anything is written; a
// persistence failure rolls the whole run back. Cancellation before the
// persist step applies zero changes.
func (o *Orchestrator) Run(ctx context.Context, input Input) (*Summary, error) {
	if err := scoring.ValidateCriteria(input.Criteria); err != nil {
		return nil, stderrors.NewConfigurationInvalidError(err.Error())
	}

	token, err := o.lock.Acquire(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := o.lock.Release(context.WithoutCancel(ctx), input.CampaignID, token); err != nil {
			o.logger.Warn("campaign lock release failed", map[string]interface{}{
				"campaignId": input.CampaignID,
				"error":      err.Error(),
			})
		}
	}()

	summary, err := o.run(ctx, input)

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MeritListRuns.WithLabelValues(input.CampaignID, result).Inc()

	return summary, err
}

func (o *Orchestrator) run(ctx context.Context, input Input) (*Summary, error) {
	runID := uuid.New().String()
	log := o.logger.WithFields(map[string]interface{}{
		"runId":      runID,
		"campaignId": input.CampaignID,
	})
	log.Info("merit list run started", map[string]interface{}{
		"reservationPolicy": input.ReservationPolicy,
	})

	campaign, err := o.store.GetCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	cutoff := input.CutoffScore
	if cutoff == nil {
		cutoff = campaign.CutoffScore
	}

	var quotas []models.ReservationQuota
	if input.ReservationPolicy {
		quotas = campaign.Quotas
	}
	if err := allocation.ValidateQuotas(campaign.TotalSeats, quotas); err != nil {
		return nil, stderrors.NewConfigurationInvalidError(err.Error())
	}

	apps, err := o.store.ListApplications(ctx, models.ApplicationFilter{
		CampaignID: input.CampaignID,
		Statuses:   eligibleStatuses,
	})
	if err != nil {
		return nil, err
	}

	eligible, exclusions := partition(apps)

	scored := make([]ranking.Scored, len(eligible))
	for i, app := range eligible {
		scored[i] = ranking.Scored{
			App:        app,
			MeritScore: scoring.Score(app, input.Criteria),
		}
	}

	ranked := ranking.Rank(scored)
	decisions := allocation.Allocate(ranked, campaign.TotalSeats, quotas, cutoff, campaign.WaitlistLimit)

	byID := make(map[string]models.Application, len(eligible))
	for _, app := range eligible {
		byID[app.ID] = app
	}

	summary := &Summary{RunID: runID}
	rows := make([]store.MeritListRow, 0, len(ranked))
	decisionFor := make(map[string]allocation.Decision, len(decisions))
	for _, d := range decisions {
		decisionFor[d.ApplicationID] = d
	}

	for _, r := range ranked {
		d := decisionFor[r.App.ID]
		if err := status.ValidateDecision(byID[r.App.ID], d.Status); err != nil {
			// Invariant breach on one row excludes that row, not the run.
			log.Error("illegal allocator decision", map[string]interface{}{
				"applicationId": r.App.ID,
				"from":          string(r.App.Status),
				"to":            string(d.Status),
			})
			exclusions = append(exclusions, Exclusion{
				ApplicationID: r.App.ID,
				Status:        r.App.Status,
				Reason:        "illegal_transition",
			})
			continue
		}
		rows = append(rows, store.MeritListRow{
			ApplicationID:  r.App.ID,
			MeritScore:     r.MeritScore,
			MeritRank:      r.Rank,
			Status:         d.Status,
			DecisionSource: models.DecisionSourceMeritList,
		})
		switch d.Status {
		case models.StatusSelected:
			summary.Selected++
		case models.StatusWaitlisted:
			summary.Waitlisted++
		case models.StatusRejected:
			summary.Rejected++
		}
	}
	summary.TotalProcessed = len(rows)
	summary.Excluded = len(exclusions)
	summary.Exclusions = exclusions

	// Nothing has been written yet; a cancelled caller gets zero changes.
	if err := ctx.Err(); err != nil {
		return nil, stderrors.NewTimeoutError("merit_list_run", err)
	}

	if err := o.store.SaveMeritList(ctx, input.CampaignID, rows); err != nil {
		return nil, err
	}

	metrics.MeritListApplicantsRanked.WithLabelValues(input.CampaignID).Observe(float64(len(rows)))

	o.audit(ctx, input.CampaignID, runID, summary)
	o.index(ctx, input.CampaignID, runID, rows, decisionFor, summary)

	log.Info("merit list run finished", map[string]interface{}{
		"totalProcessed": summary.TotalProcessed,
		"selected":       summary.Selected,
		"waitlisted":     summary.Waitlisted,
		"rejected":       summary.Rejected,
		"excluded":       summary.Excluded,
	})
	return summary, nil
}

// partition splits the loaded rows into the allocator-owned set and the
// exclusions (review rejections and anything else that slipped in).
func partition(apps []models.Application) ([]models.Application, []Exclusion) {
	var eligible []models.Application
	var exclusions []Exclusion
	for _, app := range apps {
		if status.AllocatorEligible(app) {
			eligible = append(eligible, app)
			continue
		}
		exclusions = append(exclusions, Exclusion{
			ApplicationID: app.ID,
			Status:        app.Status,
			Reason:        "not_allocator_eligible",
		})
	}
	return eligible, exclusions
}

func (o *Orchestrator) audit(ctx context.Context, campaignID, runID string, summary *Summary) {
	details := map[string]interface{}{
		"runId":          runID,
		"totalProcessed": summary.TotalProcessed,
		"selected":       summary.Selected,
		"waitlisted":     summary.Waitlisted,
		"rejected":       summary.Rejected,
		"excluded":       summary.Excluded,
	}
	if len(summary.Exclusions) > 0 {
		details["exclusions"] = summary.Exclusions
	}
	o.store.RecordAudit(ctx, "merit_list_generated", "campaign", campaignID, details)
}

func (o *Orchestrator) index(ctx context.Context, campaignID, runID string, rows []store.MeritListRow, decisionFor map[string]allocation.Decision, summary *Summary) {
	if o.indexer == nil {
		return
	}

	entries := make([]search.Entry, len(rows))
	for i, r := range rows {
		entries[i] = search.Entry{
			ApplicationID: r.ApplicationID,
			Category:      decisionFor[r.ApplicationID].Category,
			MeritScore:    r.MeritScore,
			MeritRank:     r.MeritRank,
			Status:        r.Status,
		}
	}
	doc := search.Document{
		RunID:       runID,
		CampaignID:  campaignID,
		Entries:     entries,
		Selected:    summary.Selected,
		Waitlisted:  summary.Waitlisted,
		Rejected:    summary.Rejected,
		GeneratedAt: time.Now().UTC(),
	}
	if err := o.indexer.IndexMeritList(ctx, doc); err != nil {
		o.logger.Warn("merit list index write failed", map[string]interface{}{
			"runId":      runID,
			"campaignId": campaignID,
			"error":      err.Error(),
		})
	}
}
