package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/apperrors"
	"github.com/seqcenter/annoserve/internal/metrics"
	"github.com/seqcenter/annoserve/internal/naming"
	"github.com/seqcenter/annoserve/internal/token"
	"github.com/seqcenter/annoserve/internal/workflow"
)

// Service exposes the job lifecycle operations on top of the registry
// and the two collaborators. Every record-touching operation validates
// the caller's secret before doing anything else.
type Service struct {
	registry *Registry
	engine   Engine
	signer   ObjectSigner
	version  Version
	logger   *zap.Logger
}

// NewService wires the lifecycle service.
func NewService(registry *Registry, engine Engine, signer ObjectSigner, version Version, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		engine:   engine,
		signer:   signer,
		version:  version,
		logger:   logger,
	}
}

// Version returns the pipeline/database/backend version triple.
func (s *Service) Version() Version {
	return s.version
}

// Init creates a new uninitialized job: fresh id, fresh secret,
// sanitized display name, plus presigned upload URLs for the job's
// inputs.
func (s *Service) Init(name string, replicons RepliconTableType) (Credentials, UploadLinks, error) {
	secret, err := token.New()
	if err != nil {
		metrics.ObserveJobOperation("init", "error")
		return Credentials{}, UploadLinks{}, fmt.Errorf("generate job secret: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	s.registry.Insert(Record{
		ID:          id,
		Secret:      secret,
		DisplayName: naming.Sanitize(name),
		Status:      StatusUninitialized,
		StartedAt:   now,
		UpdatedAt:   now,
	})

	links, err := s.signer.UploadBundle(id, replicons)
	if err != nil {
		metrics.ObserveJobOperation("init", "error")
		return Credentials{}, UploadLinks{}, apperrors.Collaborator("storage.sign_upload", err)
	}

	s.logger.Info("job initialized", zap.String("job_id", id))
	metrics.ObserveJobOperation("init", "ok")
	return Credentials{ID: id, Secret: secret}, links, nil
}

// Start submits the job to the workflow engine. The record is only
// mutated after a successful submission; a collaborator failure leaves
// it untouched. Start is not idempotent: a second call on the same
// credentials re-submits and adopts the new execution.
func (s *Service) Start(ctx context.Context, creds Credentials, cfg JobConfig, origin string) error {
	if origin == "" {
		origin = "Unknown"
	}
	parameters := cfg.Parameters()

	err := s.registry.Mutate(creds.ID, func(rec *Record) error {
		if !token.Matches(rec.Secret, creds.Secret) {
			return apperrors.Unauthorized()
		}

		result, err := s.engine.Submit(ctx, workflow.SubmitRequest{
			TemplateName: fmt.Sprintf("annotate-job-%s", s.version.Tool),
			Labels: map[string]string{
				workflow.LabelJobID:  rec.ID,
				workflow.LabelName:   rec.DisplayName,
				workflow.LabelSecret: rec.Secret,
				workflow.LabelOrigin: origin,
			},
			Parameters: map[string]string{
				"parameter": parameters,
				"jobid":     rec.ID,
			},
			GenerateName: fmt.Sprintf("annotate-job-%s-", rec.ID),
		})
		if err != nil {
			return apperrors.Collaborator("workflow.submit", err)
		}

		rec.ExecutionName = result.Name
		rec.Status = StatusPending
		rec.StartedAt = result.CreatedAt
		rec.UpdatedAt = time.Now().UTC()
		return nil
	})
	// A missing record is indistinguishable from a wrong secret here:
	// start never confirms whether an id exists.
	if errors.Is(err, apperrors.ErrNotFound) {
		err = apperrors.Unauthorized()
	}
	if err != nil {
		metrics.ObserveJobOperation("start", outcome(err))
		return err
	}

	s.logger.Info("job submitted", zap.String("job_id", creds.ID))
	metrics.ObserveJobOperation("start", "ok")
	return nil
}

// List resolves a batch of credential pairs. Each pair lands in
// exactly one bucket: an authorized projection, UNAUTHORIZED on secret
// mismatch, or NOT_FOUND for an unknown id. The two failure kinds are
// deliberately distinct so polling clients can drop deleted jobs;
// hiding record existence is not a goal of this endpoint.
func (s *Service) List(pairs []Credentials) ListResult {
	result := ListResult{
		Jobs:   []JobStatus{},
		Failed: []FailedJobStatus{},
	}
	now := time.Now().UTC()
	for _, pair := range pairs {
		rec, ok := s.registry.Get(pair.ID)
		if !ok {
			result.Failed = append(result.Failed, FailedJobStatus{ID: pair.ID, Status: FailureNotFound})
			continue
		}
		if !token.Matches(rec.Secret, pair.Secret) {
			result.Failed = append(result.Failed, FailedJobStatus{ID: pair.ID, Status: FailureUnauthorized})
			continue
		}
		projection := JobStatus{
			ID:      rec.ID,
			Status:  rec.Status,
			Started: rec.StartedAt,
			Updated: rec.UpdatedAt,
			Name:    rec.DisplayName,
		}
		// Liveness for polling consumers: a job that is still moving
		// reports the read time as its last update.
		if !rec.Status.Terminal() {
			projection.Updated = now
		}
		result.Jobs = append(result.Jobs, projection)
	}
	metrics.ObserveJobOperation("list", "ok")
	return result
}

// Delete removes the job. If a backing execution exists its deletion
// is requested first; the record stays in the registry unless the
// engine deletion succeeded, so a running execution is never orphaned.
func (s *Service) Delete(ctx context.Context, creds Credentials) error {
	err := s.registry.Remove(creds.ID, func(rec Record) error {
		if !token.Matches(rec.Secret, creds.Secret) {
			return apperrors.Unauthorized()
		}
		if err := s.engine.DeleteExecution(ctx, rec.ExecutionName, rec.ExecutionUID, rec.Retired); err != nil {
			return apperrors.Collaborator("workflow.delete", err)
		}
		return nil
	})
	if err != nil {
		metrics.ObserveJobOperation("delete", outcome(err))
		return err
	}

	s.logger.Info("job deleted", zap.String("job_id", creds.ID))
	metrics.ObserveJobOperation("delete", "ok")
	return nil
}

// Results returns the presigned download bundle for a succeeded job.
func (s *Service) Results(creds Credentials) (Results, error) {
	rec, ok := s.registry.Get(creds.ID)
	if !ok {
		metrics.ObserveJobOperation("results", "not_found")
		return Results{}, apperrors.NotFound("job", creds.ID)
	}
	if !token.Matches(rec.Secret, creds.Secret) {
		metrics.ObserveJobOperation("results", "unauthorized")
		return Results{}, apperrors.Unauthorized()
	}
	if rec.Status != StatusSucceeded {
		metrics.ObserveJobOperation("results", "not_ready")
		return Results{}, apperrors.NotReady(rec.ID)
	}

	files, err := s.signer.DownloadBundle(rec.ID)
	if err != nil {
		metrics.ObserveJobOperation("results", "error")
		return Results{}, apperrors.Collaborator("storage.sign_download", err)
	}

	metrics.ObserveJobOperation("results", "ok")
	return Results{
		ID:      rec.ID,
		Started: rec.StartedAt,
		Updated: rec.UpdatedAt,
		Name:    rec.DisplayName,
		Files:   files,
	}, nil
}

// Logs fetches the execution's filtered log output.
func (s *Service) Logs(ctx context.Context, creds Credentials) (string, error) {
	rec, ok := s.registry.Get(creds.ID)
	if !ok {
		metrics.ObserveJobOperation("logs", "not_found")
		return "", apperrors.NotFound("job", creds.ID)
	}
	if !token.Matches(rec.Secret, creds.Secret) {
		metrics.ObserveJobOperation("logs", "unauthorized")
		return "", apperrors.Unauthorized()
	}

	logs, err := s.engine.ExecutionLogs(ctx, rec.ExecutionName, rec.ExecutionUID, rec.Retired)
	if err != nil {
		metrics.ObserveJobOperation("logs", "error")
		return "", apperrors.Collaborator("workflow.logs", err)
	}
	metrics.ObserveJobOperation("logs", "ok")
	return logs, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrNotReady):
		return "not_ready"
	default:
		return "error"
	}
}
