// internal/workers/admission/validate-campaign-config/handler.go

// Package validatecampaignconfig pre-flights a campaign's configuration for
// the setup flow: weight sum, quota percentages, and seat math, reported as a
// structured validity result rather than a thrown error.
package validatecampaignconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admission-workers/internal/admission/allocation"
	"admission-workers/internal/admission/scoring"
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-campaign-config"

type Handler struct {
	config       *Config
	errorHandler *stderrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		errorHandler: stderrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.fail(ctx, client, job, stderrors.NewApplicationValidationFailedError(
			fmt.Sprintf("parse job variables: %v", err)))
		return
	}
	if err := validateInput(raw); err != nil {
		h.fail(ctx, client, job, stderrors.NewApplicationValidationFailedError(err.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, stderrors.NewApplicationValidationFailedError(
			fmt.Sprintf("parse job variables: %v", err)))
		return
	}

	output := h.Execute(&input)

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute checks the campaign's domain rules. A broken configuration is a
// valid worker result with Valid=false, not a job failure; the setup flow
// routes on the report.
func (h *Handler) Execute(input *Input) *Output {
	var errs []string

	if err := scoring.ValidateCriteria(input.Criteria); err != nil {
		errs = append(errs, err.Error())
	}
	if err := allocation.ValidateQuotas(input.TotalSeats, input.Quotas); err != nil {
		errs = append(errs, err.Error())
	}
	if input.CutoffScore != nil && (*input.CutoffScore < 0 || *input.CutoffScore > 100) {
		errs = append(errs, fmt.Sprintf("cutoffScore must be in [0,100], got %v", *input.CutoffScore))
	}
	if input.WaitlistLimit < 0 {
		errs = append(errs, fmt.Sprintf("waitlistLimit must not be negative, got %d", input.WaitlistLimit))
	}

	if len(errs) > 0 {
		h.logger.Info("campaign config rejected", map[string]interface{}{
			"campaignId": input.CampaignID,
			"errors":     errs,
		})
		return &Output{Valid: false, Errors: errs}
	}

	return &Output{Valid: true}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*stderrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
