// internal/workers/admission/generate-merit-list/handler_test.go
package generatemeritlist

import (
	"context"
	"testing"

	"admission-workers/internal/admission/meritlist"
	"admission-workers/internal/common/auth"
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	lastInput meritlist.Input
	summary   *meritlist.Summary
	err       error
}

func (f *fakeRunner) Run(ctx context.Context, input meritlist.Input) (*meritlist.Summary, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeVerifier struct {
	result *auth.IntrospectionResult
	err    error
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (*auth.IntrospectionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func fp(v float64) *float64 { return &v }

func validInput() *Input {
	return &Input{
		CampaignID: "camp-1",
		Criteria: models.MeritCriteria{
			AcademicWeight:  40,
			EntranceWeight:  30,
			InterviewWeight: 20,
			ExtraWeight:     10,
		},
		CutoffScore:       fp(60),
		ReservationPolicy: true,
	}
}

func TestExecute_Success(t *testing.T) {
	runner := &fakeRunner{
		summary: &meritlist.Summary{
			RunID:          "run-1",
			TotalProcessed: 12,
			Selected:       10,
			Waitlisted:     1,
			Rejected:       1,
		},
	}
	h := NewHandler(LoadConfig(), runner, nil, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "run-1", output.RunID)
	assert.Equal(t, 12, output.TotalProcessed)
	assert.Equal(t, 10, output.Selected)
	assert.Equal(t, 1, output.Waitlisted)
	assert.Equal(t, 1, output.Rejected)
	assert.Equal(t, 0, output.Excluded)

	assert.Equal(t, "camp-1", runner.lastInput.CampaignID)
	assert.True(t, runner.lastInput.ReservationPolicy)
	require.NotNil(t, runner.lastInput.CutoffScore)
	assert.Equal(t, 60.0, *runner.lastInput.CutoffScore)
}

func TestExecute_RunnerErrorPropagates(t *testing.T) {
	runner := &fakeRunner{err: stderrors.NewRecomputationInProgressError("camp-1")}
	h := NewHandler(LoadConfig(), runner, nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), validInput())

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRecomputationInProgress, stdErr.Code)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		verifier TokenVerifier
		token    string
		wantErr  bool
	}{
		{
			name:  "auth disabled",
			token: "",
		},
		{
			name:     "active token",
			verifier: &fakeVerifier{result: &auth.IntrospectionResult{Active: true, Username: "registrar"}},
			token:    "good-token",
		},
		{
			name:     "missing token",
			verifier: &fakeVerifier{result: &auth.IntrospectionResult{Active: true}},
			token:    "",
			wantErr:  true,
		},
		{
			name:     "inactive token",
			verifier: &fakeVerifier{result: &auth.IntrospectionResult{Active: false}},
			token:    "stale-token",
			wantErr:  true,
		},
		{
			name:     "introspection failure",
			verifier: &fakeVerifier{err: assert.AnError},
			token:    "any-token",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), &fakeRunner{summary: &meritlist.Summary{}}, tt.verifier, logger.NewNoOpLogger())
			input := validInput()
			input.AdminToken = tt.token

			err := h.authorize(context.Background(), input)

			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*stderrors.StandardError)
				require.True(t, ok)
				assert.Equal(t, stderrors.ErrorCode("AUTHENTICATION_ERROR"), stdErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	valid := map[string]interface{}{
		"campaignId": "camp-1",
		"criteria": map[string]interface{}{
			"academicWeight":        40,
			"entranceWeight":        30,
			"interviewWeight":       20,
			"extracurricularWeight": 10,
		},
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]interface{})
		wantErr bool
	}{
		{
			name:   "minimal valid input",
			mutate: func(m map[string]interface{}) {},
		},
		{
			name: "with optional fields",
			mutate: func(m map[string]interface{}) {
				m["cutoffScore"] = 60
				m["reservationPolicy"] = true
				m["adminToken"] = "tok"
			},
		},
		{
			name:    "missing campaignId",
			mutate:  func(m map[string]interface{}) { delete(m, "campaignId") },
			wantErr: true,
		},
		{
			name:    "empty campaignId",
			mutate:  func(m map[string]interface{}) { m["campaignId"] = "" },
			wantErr: true,
		},
		{
			name:    "missing criteria",
			mutate:  func(m map[string]interface{}) { delete(m, "criteria") },
			wantErr: true,
		},
		{
			name: "missing weight",
			mutate: func(m map[string]interface{}) {
				delete(m["criteria"].(map[string]interface{}), "extracurricularWeight")
			},
			wantErr: true,
		},
		{
			name: "weight out of range",
			mutate: func(m map[string]interface{}) {
				m["criteria"].(map[string]interface{})["academicWeight"] = 140
			},
			wantErr: true,
		},
		{
			name:    "cutoff above 100",
			mutate:  func(m map[string]interface{}) { m["cutoffScore"] = 101 },
			wantErr: true,
		},
		{
			name:    "reservationPolicy wrong type",
			mutate:  func(m map[string]interface{}) { m["reservationPolicy"] = "yes" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := map[string]interface{}{}
			for k, v := range valid {
				input[k] = v
			}
			criteria := map[string]interface{}{}
			for k, v := range valid["criteria"].(map[string]interface{}) {
				criteria[k] = v
			}
			input["criteria"] = criteria
			tt.mutate(input)

			err := validateInput(input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
