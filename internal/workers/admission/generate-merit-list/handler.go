// internal/workers/admission/generate-merit-list/handler.go
package generatemeritlist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admission-workers/internal/admission/meritlist"
	"admission-workers/internal/common/auth"
	stderrors "admission-workers/internal/common/errors"
	"admission-workers/internal/common/logger"
	"admission-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-merit-list"

// Runner executes one merit-list recomputation.
type Runner interface {
	Run(ctx context.Context, input meritlist.Input) (*meritlist.Summary, error)
}

// TokenVerifier checks the triggering admin's token. Nil disables the check.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.IntrospectionResult, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	verifier     TokenVerifier
	errorHandler *stderrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, runner Runner, verifier TokenVerifier, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		verifier:     verifier,
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

	if err := h.authorize(ctx, &input); err != nil {
		h.fail(ctx, client, job, err)
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

// authorize verifies the triggering admin token when a verifier is wired.
func (h *Handler) authorize(ctx context.Context, input *Input) error {
	if h.verifier == nil {
		return nil
	}
	if input.AdminToken == "" {
		return stderrors.NewAuthenticationError("adminToken is required to generate a merit list")
	}
	result, err := h.verifier.VerifyToken(ctx, input.AdminToken)
	if err != nil {
		return stderrors.NewAuthenticationError(fmt.Sprintf("token verification failed: %v", err))
	}
	if !result.Active {
		return stderrors.NewAuthenticationError("admin token is not active")
	}
	return nil
}

// Execute runs the recomputation. Exported for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	summary, err := h.runner.Run(ctx, meritlist.Input{
		CampaignID:        input.CampaignID,
		Criteria:          input.Criteria,
		CutoffScore:       input.CutoffScore,
		ReservationPolicy: input.ReservationPolicy,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		Success:        true,
		RunID:          summary.RunID,
		TotalProcessed: summary.TotalProcessed,
		Selected:       summary.Selected,
		Waitlisted:     summary.Waitlisted,
		Rejected:       summary.Rejected,
		Excluded:       summary.Excluded,
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
		return
	}
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":         job.Key,
		"totalProcessed": output.TotalProcessed,
		"selected":       output.Selected,
		"waitlisted":     output.Waitlisted,
		"rejected":       output.Rejected,
		"excluded":       output.Excluded,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*stderrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
