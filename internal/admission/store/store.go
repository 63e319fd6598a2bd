// internal/admission/store/store.go

// Package store is the engine's read/write contract against PostgreSQL, with
// a Redis read-through cache for campaign configuration.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const campaignCachePrefix = "admission:campaign:"

// MeritListRow is one applicant's result from a recomputation run, ready to
// persist.
type MeritListRow struct {
	ApplicationID  string
	MeritScore     float64
	MeritRank      int
	Status         models.ApplicationStatus
	DecisionSource models.DecisionSource
}

// Store reads campaign and application data and writes engine results. The
// cache client may be nil; every read then goes straight to Postgres.
type Store struct {
	db       *sql.DB
	cache    *redis.Client
	logger   logger.Logger
	cacheTTL time.Duration
}

func New(db *sql.DB, cache *redis.Client, log logger.Logger, cacheTTL time.Duration) *Store {
	return &Store{
		db:       db,
		cache:    cache,
		logger:   log.WithFields(map[string]interface{}{"component": "admission-store"}),
		cacheTTL: cacheTTL,
	}
}

// GetCampaign loads one campaign, read-through cached under a TTL. Cache
// failures are logged and ignored; the database remains the source of truth.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (*models.Campaign, error) {
	cacheKey := campaignCachePrefix + campaignID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var campaign models.Campaign
			if err := json.Unmarshal([]byte(cached), &campaign); err == nil {
				return &campaign, nil
			}
			s.logger.Warn("corrupt campaign cache entry, falling through", map[string]interface{}{
				"campaignId": campaignID,
			})
		}
	}

	var (
		campaign   models.Campaign
		quotasJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, total_seats,
		       academic_weight, entrance_weight, interview_weight, extracurricular_weight,
		       cutoff_score, waitlist_limit, reservation_quotas
		FROM campaigns
		WHERE id = $1`, campaignID).Scan(
		&campaign.ID,
		&campaign.TotalSeats,
		&campaign.Criteria.AcademicWeight,
		&campaign.Criteria.EntranceWeight,
		&campaign.Criteria.InterviewWeight,
		&campaign.Criteria.ExtraWeight,
		&campaign.CutoffScore,
		&campaign.WaitlistLimit,
		&quotasJSON,
	)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewCampaignNotFoundError(campaignID)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("get_campaign", err)
	}

	if len(quotasJSON) > 0 {
		if err := json.Unmarshal(quotasJSON, &campaign.Quotas); err != nil {
			return nil, stderrors.NewConfigurationInvalidError(
				fmt.Sprintf("campaign %s has malformed reservation quotas: %v", campaignID, err))
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(campaign); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("campaign cache write failed", map[string]interface{}{
					"campaignId": campaignID,
					"error":      err.Error(),
				})
			}
		}
	}

	return &campaign, nil
}

// ListApplications returns the campaign's applications matching the status
// set, ordered by submission time for stable processing.
func (s *Store) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	if err := filter.Validate(); err != nil {
		return nil, stderrors.NewInvalidFilterFormatError(err.Error())
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, category,
		       academic_score, entrance_score, interview_score, extracurricular_score,
		       merit_score, merit_rank, status, decision_source, submitted_at
		FROM applications
		WHERE campaign_id = $1 AND status = ANY($2)
		ORDER BY submitted_at, id`,
		filter.CampaignID, pq.Array(filter.StatusStrings()))
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_applications", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("list_applications", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_applications", err)
	}
	return apps, nil
}

// GetApplication loads one application by id.
func (s *Store) GetApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, category,
		       academic_score, entrance_score, interview_score, extracurricular_score,
		       merit_score, merit_rank, status, decision_source, submitted_at
		FROM applications
		WHERE id = $1`, applicationID)

	app, err := scanApplication(row.Scan)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("get_application", err)
	}
	return &app, nil
}

// UpdateStatus writes one manual status change. The caller has already
// validated the transition against the state machine.
func (s *Store) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, source models.DecisionSource) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, decision_source = $3, updated_at = $4
		WHERE id = $1`,
		applicationID, string(status), string(source), time.Now().UTC())
	if err != nil {
		return stderrors.NewPersistenceFailedError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return stderrors.NewPersistenceFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewApplicationNotFoundError(applicationID)
	}
	return nil
}

// SaveMeritList persists a full recomputation result in one transaction:
// every previous rank for the campaign is cleared, then each row's score,
// rank, status, and decision source are written. All rows land or none do.
func (s *Store) SaveMeritList(ctx context.Context, campaignID string, results []MeritListRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stderrors.NewPersistenceFailedError(err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Clear the previous run so stale ranks can never mix with new ones.
	if _, err := tx.ExecContext(ctx, `
		UPDATE applications
		SET merit_rank = NULL, updated_at = $2
		WHERE campaign_id = $1 AND merit_rank IS NOT NULL`,
		campaignID, now); err != nil {
		return stderrors.NewPersistenceFailedError(err)
	}

	for _, r := range results {
		result, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET merit_score = $2, merit_rank = $3, status = $4, decision_source = $5, updated_at = $6
			WHERE id = $1`,
			r.ApplicationID, r.MeritScore, r.MeritRank, string(r.Status), string(r.DecisionSource), now)
		if err != nil {
			return stderrors.NewPersistenceFailedError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return stderrors.NewPersistenceFailedError(err)
		}
		if affected == 0 {
			return stderrors.NewPersistenceFailedError(
				fmt.Errorf("application %s disappeared during merit list save", r.ApplicationID))
		}
	}

	if err := tx.Commit(); err != nil {
		return stderrors.NewPersistenceFailedError(err)
	}
	return nil
}

// RecordAudit writes one audit_log row. Audit failures are logged and
// swallowed; they never fail the operation that produced them.
func (s *Store) RecordAudit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn("failed to marshal audit details", map[string]interface{}{
			"eventType": eventType,
			"error":     err.Error(),
		})
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, resourceType, resourceID, detailsJSON, time.Now().UTC())
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"eventType":  eventType,
			"resourceId": resourceID,
			"error":      err.Error(),
		})
	}
}

func scanApplication(scan func(dest ...interface{}) error) (models.Application, error) {
	var (
		app      models.Application
		category sql.NullString
		source   sql.NullString
	)
	err := scan(
		&app.ID,
		&app.CampaignID,
		&category,
		&app.AcademicScore,
		&app.EntranceScore,
		&app.InterviewScore,
		&app.ExtraScore,
		&app.MeritScore,
		&app.MeritRank,
		&app.Status,
		&source,
		&app.SubmittedAt,
	)
	if err != nil {
		return models.Application{}, err
	}
	app.Category = category.String
	app.DecisionSource = models.DecisionSource(source.String)
	return app, nil
}
