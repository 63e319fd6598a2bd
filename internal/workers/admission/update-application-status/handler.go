// internal/workers/admission/update-application-status/handler.go
package updateapplicationstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admission-workers/internal/admission/status"
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/common/metrics"
	"admission-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-application-status"

// Store is the persistence surface for manual review actions.
type Store interface {
	GetApplication(ctx context.Context, applicationID string) (*models.Application, error)
	UpdateStatus(ctx context.Context, applicationID string, s models.ApplicationStatus, source models.DecisionSource) error
	RecordAudit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{})
}

type Handler struct {
	config       *Config
	store        Store
	errorHandler *stderrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, st Store, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        st,
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute applies one manual review transition. Exported for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	target := models.ApplicationStatus(input.TargetStatus)

	app, err := h.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	if err := status.ValidateManual(app.Status, target); err != nil {
		return nil, err
	}

	// A reviewer's rejection is final; the merit-list engine never
	// reconsiders it. Other manual hops keep whatever source is set.
	source := app.DecisionSource
	if target == models.StatusRejected {
		source = models.DecisionSourceReview
	}

	if err := h.store.UpdateStatus(ctx, input.ApplicationID, target, source); err != nil {
		return nil, err
	}

	h.store.RecordAudit(ctx, "application_status_changed", "application", input.ApplicationID,
		map[string]interface{}{
			"from":    string(app.Status),
			"to":      string(target),
			"reason":  input.Reason,
			"actorId": input.ActorID,
		})

	h.logger.Info("application status updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"from":          string(app.Status),
		"to":            string(target),
	})

	return &Output{
		Success:        true,
		ApplicationID:  input.ApplicationID,
		PreviousStatus: string(app.Status),
		NewStatus:      string(target),
		UpdatedAt:      time.Now().UTC().Format(time.RFC3339),
	}, nil
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
