// internal/admission/store/store_test.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func campaignColumns() []string {
	return []string{
		"id", "total_seats",
		"academic_weight", "entrance_weight", "interview_weight", "extracurricular_weight",
		"cutoff_score", "waitlist_limit", "reservation_quotas",
	}
}

func applicationColumns() []string {
	return []string{
		"id", "campaign_id", "category",
		"academic_score", "entrance_score", "interview_score", "extracurricular_score",
		"merit_score", "merit_rank", "status", "decision_source", "submitted_at",
	}
}

func TestGetCampaign(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	quotas := `[{"category":"SC","percentage":15}]`
	mock.ExpectQuery(`SELECT id, total_seats`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows(campaignColumns()).
			AddRow("camp-1", 100, 40.0, 30.0, 20.0, 10.0, 60.0, 0, []byte(quotas)))

	campaign, err := store.GetCampaign(context.Background(), "camp-1")

	require.NoError(t, err)
	assert.Equal(t, "camp-1", campaign.ID)
	assert.Equal(t, 100, campaign.TotalSeats)
	assert.Equal(t, 40.0, campaign.Criteria.AcademicWeight)
	require.NotNil(t, campaign.CutoffScore)
	assert.Equal(t, 60.0, *campaign.CutoffScore)
	require.Len(t, campaign.Quotas, 1)
	assert.Equal(t, "SC", campaign.Quotas[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCampaign_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectQuery(`SELECT id, total_seats`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetCampaign(context.Background(), "missing")

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeCampaignNotFound, stdErr.Code)
}

func TestGetCampaign_CachesResult(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, cache := setupMiniredis(t)
	store := New(db, cache, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectQuery(`SELECT id, total_seats`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows(campaignColumns()).
			AddRow("camp-1", 50, 100.0, 0.0, 0.0, 0.0, nil, 0, nil))

	first, err := store.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)

	// Second read must come from Redis; no second query is expected on the mock.
	second, err := store.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, mr.Exists("admission:campaign:camp-1"))
}

func TestGetCampaign_SurvivesCorruptCache(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, cache := setupMiniredis(t)
	store := New(db, cache, logger.NewNoOpLogger(), time.Minute)

	require.NoError(t, mr.Set("admission:campaign:camp-1", "not json"))

	mock.ExpectQuery(`SELECT id, total_seats`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows(campaignColumns()).
			AddRow("camp-1", 50, 100.0, 0.0, 0.0, 0.0, nil, 0, nil))

	campaign, err := store.GetCampaign(context.Background(), "camp-1")

	require.NoError(t, err)
	assert.Equal(t, "camp-1", campaign.ID)
}

func TestListApplications(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	submitted := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, campaign_id`).
		WithArgs("camp-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(applicationColumns()).
			AddRow("app-1", "camp-1", "SC", 90.0, 80.0, nil, nil, nil, nil, "SHORTLISTED", "", submitted).
			AddRow("app-2", "camp-1", nil, 70.0, nil, nil, nil, 70.0, 3, "SELECTED", "merit_list", submitted))

	apps, err := store.ListApplications(context.Background(), models.ApplicationFilter{
		CampaignID: "camp-1",
		Statuses:   []models.ApplicationStatus{models.StatusShortlisted, models.StatusSelected},
	})

	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "SC", apps[0].Category)
	assert.Equal(t, models.StatusShortlisted, apps[0].Status)
	assert.Nil(t, apps[0].MeritRank)
	assert.Equal(t, "", apps[1].Category)
	assert.Equal(t, models.DecisionSourceMeritList, apps[1].DecisionSource)
	require.NotNil(t, apps[1].MeritRank)
	assert.Equal(t, 3, *apps[1].MeritRank)
}

func TestListApplications_RejectsUnscopedFilter(t *testing.T) {
	db, _ := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	_, err := store.ListApplications(context.Background(), models.ApplicationFilter{})

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeInvalidFilterFormat, stdErr.Code)
}

func TestUpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-1", "UNDER_REVIEW", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateStatus(context.Background(), "app-1", models.StatusUnderReview, models.DecisionSourceNone)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateStatus(context.Background(), "ghost", models.StatusUnderReview, models.DecisionSourceNone)

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeApplicationNotFound, stdErr.Code)
}

func TestSaveMeritList_CommitsAllRows(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("camp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-1", 74.0, 1, "SELECTED", "merit_list", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-2", 55.0, 2, "REJECTED", "merit_list", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveMeritList(context.Background(), "camp-1", []MeritListRow{
		{ApplicationID: "app-1", MeritScore: 74, MeritRank: 1, Status: models.StatusSelected, DecisionSource: models.DecisionSourceMeritList},
		{ApplicationID: "app-2", MeritScore: 55, MeritRank: 2, Status: models.StatusRejected, DecisionSource: models.DecisionSourceMeritList},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMeritList_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`UPDATE applications`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.SaveMeritList(context.Background(), "camp-1", []MeritListRow{
		{ApplicationID: "app-1", MeritScore: 74, MeritRank: 1, Status: models.StatusSelected, DecisionSource: models.DecisionSourceMeritList},
	})

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodePersistenceFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMeritList_FailsWhenRowMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.SaveMeritList(context.Background(), "camp-1", []MeritListRow{
		{ApplicationID: "gone", MeritScore: 74, MeritRank: 1, Status: models.StatusSelected, DecisionSource: models.DecisionSourceMeritList},
	})

	require.Error(t, err)
}

func TestRecordAudit_SwallowsFailures(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(assert.AnError)

	// Must not panic or surface the error.
	store.RecordAudit(context.Background(), "merit_list_generated", "campaign", "camp-1",
		map[string]interface{}{"selected": 10})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAudit_WritesDetails(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db, nil, logger.NewNoOpLogger(), time.Minute)

	details := map[string]interface{}{"excluded": 2}
	detailsJSON, err := json.Marshal(details)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("merit_list_generated", "campaign", "camp-1", detailsJSON, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store.RecordAudit(context.Background(), "merit_list_generated", "campaign", "camp-1", details)

	assert.NoError(t, mock.ExpectationsWereMet())
}
